package session

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Причины изменения записи о пользователе.
const (
	ReasonLogin        = "login"
	ReasonFetch        = "fetch"
	ReasonVerified     = "verified"
	ReasonLogout       = "logout"
	ReasonExpired      = "expired"
	ReasonUnauthorized = "unauthorized"
	ReasonReset        = "reset"
)

// Fetcher загружает пользователя текущей сессии. nil без ошибки означает отсутствие сессии.
type Fetcher func(ctx context.Context) (*User, error)

// Event сообщает подписчикам об изменении записи о пользователе.
type Event struct {
	User       *User
	Generation uint64
	Reason     string
}

// Store единственный источник правды о текущем пользователе.
//
// Каждое изменение увеличивает поколение. Результат фоновой проверки
// применяется только если поколение не изменилось с начала проверки,
// поэтому явный выход всегда побеждает устаревший ответ.
type Store struct {
	fetch Fetcher
	group singleflight.Group

	mu     sync.Mutex
	user   *User
	loaded bool
	gen    uint64
	subs   map[int]chan Event
	nextID int
}

// NewStore создаёт хранилище, которое при первом обращении загружает пользователя через fetch.
func NewStore(fetch Fetcher) *Store {
	return &Store{
		fetch: fetch,
		subs:  make(map[int]chan Event),
	}
}

// Current возвращает текущего пользователя. Первое обращение после создания
// или Reset загружает его; одновременные вызовы разделяют одну загрузку.
// Загрузка не зависит от отмены ctx отдельного вызова: отменённый вызов
// возвращает ctx.Err(), остальные дожидаются результата.
func (s *Store) Current(ctx context.Context) (*User, error) {
	s.mu.Lock()
	if s.loaded {
		u := s.user
		s.mu.Unlock()
		return u, nil
	}
	s.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan("current", func() (any, error) {
		s.mu.Lock()
		if s.loaded {
			u := s.user
			s.mu.Unlock()
			return u, nil
		}
		gen := s.gen
		s.mu.Unlock()

		u, err := s.fetch(fetchCtx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen || s.loaded {
			return s.user, nil
		}
		s.user = u
		s.loaded = true
		s.gen++
		s.notifyLocked(ReasonFetch)
		return s.user, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		u, _ := res.Val.(*User)
		return u, nil
	}
}

// Peek возвращает запись без загрузки. loaded ложно, пока запись не загружена.
func (s *Store) Peek() (user *User, loaded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.loaded
}

// Snapshot возвращает запись и её поколение одним чтением.
func (s *Store) Snapshot() (user *User, loaded bool, gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user, s.loaded, s.gen
}

// Generation возвращает текущее поколение записи.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Set безусловно записывает пользователя и возвращает новое поколение.
func (s *Store) Set(u *User, reason string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
	s.loaded = true
	s.gen++
	s.notifyLocked(reason)
	return s.gen
}

// Clear сбрасывает пользователя в nil. Возвращает false, если запись уже пуста;
// в этом случае подписчики не уведомляются.
func (s *Store) Clear(reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clearLocked(reason)
}

// SetIfGeneration обновляет пользователя, только если поколение равно gen и
// запись не сброшена: сброшенную сессию восстанавливает лишь Set.
// Совпадающая запись не считается изменением.
func (s *Store) SetIfGeneration(gen uint64, u *User, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen || (s.loaded && s.user == nil) {
		return false
	}
	if s.loaded && sameUser(s.user, u) {
		return true
	}
	s.user = u
	s.loaded = true
	s.gen++
	s.notifyLocked(reason)
	return true
}

// ClearIfGeneration сбрасывает пользователя, только если поколение равно gen.
func (s *Store) ClearIfGeneration(gen uint64, reason string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return false
	}
	return s.clearLocked(reason)
}

// Reset забывает запись, следующий Current загрузит её заново.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.loaded = false
	s.gen++
}

// Subscribe возвращает канал изменений и функцию отписки. Канал хранит только
// последнее событие: медленный подписчик пропускает промежуточные.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	ch := make(chan Event, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

func (s *Store) clearLocked(reason string) bool {
	if s.loaded && s.user == nil {
		return false
	}
	s.user = nil
	s.loaded = true
	s.gen++
	s.notifyLocked(reason)
	return true
}

func (s *Store) notifyLocked(reason string) {
	ev := Event{User: s.user, Generation: s.gen, Reason: reason}
	for _, ch := range s.subs {
		select {
		case ch <- ev:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- ev:
		default:
		}
	}
}
