// Package services содержит фоновые задачи auth-service.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/zecko/internal/lib/sl"
	"github.com/magabrotheeeer/zecko/internal/models"
)

// SubscriptionRepository переводит просроченные подписки в статус expired.
type SubscriptionRepository interface {
	ExpireSubscriptions(ctx context.Context, now time.Time) ([]string, error)
}

// UserInvalidator сбрасывает закэшированный профиль пользователя.
type UserInvalidator interface {
	InvalidateUser(ctx context.Context, userUID string) error
}

// EventPublisher отправляет события в брокер.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// SchedulerService периодически закрывает истёкшие пробные и платные подписки.
// После закрытия профиль пользователя сбрасывается из кэша, чтобы следующая
// проверка сессии вернула subscriptionActive=false.
type SchedulerService struct {
	repo      SubscriptionRepository
	users     UserInvalidator
	publisher EventPublisher
	log       *slog.Logger
	interval  time.Duration
	now       func() time.Time
}

// NewSchedulerService создает новый экземпляр SchedulerService. publisher может быть nil.
func NewSchedulerService(repo SubscriptionRepository, users UserInvalidator, publisher EventPublisher,
	log *slog.Logger, interval time.Duration) *SchedulerService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &SchedulerService{
		repo:      repo,
		users:     users,
		publisher: publisher,
		log:       log,
		interval:  interval,
		now:       time.Now,
	}
}

// Run выполняет проход сразу и затем по тикеру, пока не отменён ctx.
func (s *SchedulerService) Run(ctx context.Context) {
	s.ExpireDue(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("subscription expiry scheduler stopped")
			return
		case <-ticker.C:
			s.ExpireDue(ctx)
		}
	}
}

// ExpireDue выполняет один проход и возвращает число закрытых подписок.
func (s *SchedulerService) ExpireDue(ctx context.Context) int {
	s.log.Info("starting expired subscriptions sweep")
	now := s.now().UTC()
	uids, err := s.repo.ExpireSubscriptions(ctx, now)
	if err != nil {
		s.log.Error("failed to expire subscriptions", sl.Err(err))
		return 0
	}
	if len(uids) == 0 {
		s.log.Info("no expired subscriptions found")
		return 0
	}
	s.log.Info("expired subscriptions", slog.Int("count", len(uids)))

	for _, uid := range uids {
		if err := s.users.InvalidateUser(ctx, uid); err != nil {
			s.log.Error("failed to invalidate user cache", slog.String("user_uid", uid), sl.Err(err))
		}
		if s.publisher == nil {
			continue
		}
		event := models.AuthEvent{Type: models.EventSubscriptionExpired, UserUID: uid, OccurredAt: now}
		if err := s.publisher.Publish(ctx, models.EventSubscriptionExpired, event); err != nil {
			s.log.Error("failed to publish message", sl.Err(err))
		}
	}
	return len(uids)
}
