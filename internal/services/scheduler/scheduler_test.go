package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/goleak"

	"github.com/magabrotheeeer/zecko/internal/lib/sl"
	"github.com/magabrotheeeer/zecko/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) ExpireSubscriptions(ctx context.Context, now time.Time) ([]string, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) InvalidateUser(ctx context.Context, userUID string) error {
	return m.Called(ctx, userUID).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, routingKey string, message any) error {
	return m.Called(ctx, routingKey, message).Error(0)
}

func TestSchedulerService_ExpireDue(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		setupMocks func(r *MockRepository, i *MockInvalidator, p *MockPublisher)
		want       int
	}{
		{
			name: "expires invalidates and publishes",
			setupMocks: func(r *MockRepository, i *MockInvalidator, p *MockPublisher) {
				r.On("ExpireSubscriptions", mock.Anything, fixed).Return([]string{"u1", "u2"}, nil)
				i.On("InvalidateUser", mock.Anything, "u1").Return(nil)
				i.On("InvalidateUser", mock.Anything, "u2").Return(errors.New("redis down"))
				p.On("Publish", mock.Anything, models.EventSubscriptionExpired, mock.MatchedBy(func(e models.AuthEvent) bool {
					return e.Type == models.EventSubscriptionExpired && e.OccurredAt.Equal(fixed)
				})).Return(nil).Twice()
			},
			want: 2,
		},
		{
			name: "nothing to expire",
			setupMocks: func(r *MockRepository, _ *MockInvalidator, _ *MockPublisher) {
				r.On("ExpireSubscriptions", mock.Anything, fixed).Return([]string{}, nil)
			},
			want: 0,
		},
		{
			name: "repository error",
			setupMocks: func(r *MockRepository, _ *MockInvalidator, _ *MockPublisher) {
				r.On("ExpireSubscriptions", mock.Anything, fixed).Return(nil, errors.New("db error"))
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, inv, pub := &MockRepository{}, &MockInvalidator{}, &MockPublisher{}
			tt.setupMocks(repo, inv, pub)

			s := NewSchedulerService(repo, inv, pub, sl.Discard(), time.Hour)
			s.now = func() time.Time { return fixed }

			assert.Equal(t, tt.want, s.ExpireDue(context.Background()))
			repo.AssertExpectations(t)
			inv.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestSchedulerService_RunStopsOnCancel(t *testing.T) {
	repo, inv := &MockRepository{}, &MockInvalidator{}
	var calls atomic.Int32
	repo.On("ExpireSubscriptions", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { calls.Add(1) }).
		Return([]string{}, nil)

	s := NewSchedulerService(repo, inv, nil, sl.Discard(), 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
