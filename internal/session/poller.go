package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/zecko/internal/lib/sl"
)

// State состояние фоновой проверки сессии.
type State int

const (
	// StateUnauthenticated сессии нет, проверка не выполняется.
	StateUnauthenticated State = iota
	// StateAuthenticated сессия считается действующей.
	StateAuthenticated
	// StateVerifying выполняется очередная проверка.
	StateVerifying
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateVerifying:
		return "verifying"
	default:
		return "unauthenticated"
	}
}

// Verifier подтверждает сессию на сервере.
type Verifier interface {
	Verify(ctx context.Context) (VerifyResult, error)
}

// Poller периодически подтверждает сессию, пока она считается действующей.
// Ошибки сети не завершают сессию: до ответа сервера она остаётся открытой.
type Poller struct {
	store    *Store
	verifier Verifier
	interval time.Duration
	log      *slog.Logger
	expired  func(ctx context.Context)

	mu     sync.Mutex
	state  State
	run    uint64
	active bool
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller создаёт проверку с периодом interval.
func NewPoller(store *Store, verifier Verifier, interval time.Duration, log *slog.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = sl.Discard()
	}
	return &Poller{
		store:    store,
		verifier: verifier,
		interval: interval,
		log:      log,
	}
}

// OnExpired задаёт действие, которое выполняется после того, как сервер
// отверг сессию и запись о пользователе сброшена. Вызывать до Start.
func (p *Poller) OnExpired(fn func(ctx context.Context)) {
	p.expired = fn
}

// Start запускает проверку в фоне. Повторный вызов при работающей проверке ничего не делает.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.run++
	p.active = true
	p.state = StateAuthenticated
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.loop(ctx, p.run, p.done)
}

// Stop останавливает проверку, отменяет выполняющийся запрос и дожидается
// завершения фоновой горутины.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.active = false
	p.state = StateUnauthenticated
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// State возвращает текущее состояние.
func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Running сообщает, выполняется ли проверка.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *Poller) loop(ctx context.Context, run uint64, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.check(ctx, run) {
				return
			}
		}
	}
}

// check выполняет одну проверку и возвращает false, если сессия завершена.
func (p *Poller) check(ctx context.Context, run uint64) bool {
	user, loaded, gen := p.store.Snapshot()
	if loaded && user == nil {
		// запись сброшена в обход Poller, сессии больше нет
		p.finish(run)
		return false
	}
	p.setState(run, StateVerifying)

	res, err := p.verifier.Verify(ctx)
	if ctx.Err() != nil {
		return false
	}
	if err != nil {
		p.log.Debug("session verification failed, keeping session", sl.Err(err))
		p.setState(run, StateAuthenticated)
		return true
	}
	if !res.Authenticated {
		if p.store.ClearIfGeneration(gen, ReasonExpired) {
			p.log.Info("session expired")
			if p.expired != nil {
				p.expired(ctx)
			}
			p.finish(run)
			return false
		}
		// поколение сменилось: ответ относится к уже заменённой сессии
		return p.stillActive(run)
	}
	if res.User != nil && !p.store.SetIfGeneration(gen, res.User, ReasonVerified) {
		return p.stillActive(run)
	}
	p.setState(run, StateAuthenticated)
	return true
}

// stillActive продолжает проверку, если за время запроса запись не была сброшена.
func (p *Poller) stillActive(run uint64) bool {
	if u, loaded := p.store.Peek(); loaded && u == nil {
		p.finish(run)
		return false
	}
	p.setState(run, StateAuthenticated)
	return true
}

func (p *Poller) setState(run uint64, s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active && p.run == run {
		p.state = s
	}
}

// finish переводит проверку run в unauthenticated, если её ещё не остановили.
func (p *Poller) finish(run uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.active && p.run == run {
		p.active = false
		p.state = StateUnauthenticated
		p.cancel()
		p.cancel = nil
		p.done = nil
	}
}
