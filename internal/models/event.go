package models

import "time"

// Ключи маршрутизации событий аутентификации.
const (
	EventUserRegistered      = "user.registered"
	EventUserLoggedIn        = "user.logged_in"
	EventUserLoggedOut       = "user.logged_out"
	EventSubscriptionExpired = "subscription.expired"
)

// AuthEvent сообщение, которое auth-service публикует в брокер.
type AuthEvent struct {
	Type       string    `json:"type"`
	UserUID    string    `json:"user_uid"`
	UserType   Role      `json:"user_type,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
