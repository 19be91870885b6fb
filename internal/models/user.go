// Package models содержит доменную модель пользователя Zecko: учётные данные,
// роль на маркетплейсе и состояние платной подписки.
// Структуры используются в бизнес‑логике, в хранилище и на границе API.
package models

import "time"

// Role тип учётной записи на маркетплейсе.
type Role string

const (
	// RoleFree бесплатный пользователь, публикует лиды.
	RoleFree Role = "free"
	// RoleBusiness бизнес, отвечает на лиды предложениями.
	RoleBusiness Role = "business"
	// RoleVendor продавец физических товаров через витрину.
	RoleVendor Role = "vendor"
	// RoleAdmin администратор площадки.
	RoleAdmin Role = "admin"
)

// Roles перечисляет все известные роли.
var Roles = []Role{RoleFree, RoleBusiness, RoleVendor, RoleAdmin}

// Valid сообщает, является ли роль одной из известных.
func (r Role) Valid() bool {
	switch r {
	case RoleFree, RoleBusiness, RoleVendor, RoleAdmin:
		return true
	}
	return false
}

// SelfRegistrable сообщает, можно ли получить роль через публичную регистрацию.
func (r Role) SelfRegistrable() bool {
	return r == RoleFree || r == RoleBusiness || r == RoleVendor
}

// Paid сообщает, требует ли роль платной подписки.
func (r Role) Paid() bool {
	return r == RoleBusiness || r == RoleVendor
}

// Статусы подписки пользователя.
const (
	SubscriptionNone     = "none"
	SubscriptionTrial    = "trial"
	SubscriptionActive   = "active"
	SubscriptionExpired  = "expired"
	SubscriptionCanceled = "canceled"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID               string     // Уникальный идентификатор пользователя
	Email              string     // Электронная почта (уникальная)
	Username           string     // Имя пользователя (уникальное)
	PasswordHash       string     // Хэш пароля пользователя
	Role               Role       // Роль на маркетплейсе
	SuperAdmin         bool       // Расширенные права администратора
	Phone              string     // Телефон в формате E.164, для business и vendor
	Country            string     // Код страны ISO 3166-1 alpha-2
	BusinessName       string     // Название компании, для business и vendor
	SubscriptionStatus string     // none, trial, active, expired или canceled
	SubscriptionExpire *time.Time // Дата истечения пробного периода или оплаченной подписки
	CreatedAt          time.Time
}

// SubscriptionActive сообщает, действует ли подписка пользователя на момент now.
func (u *User) SubscriptionActive(now time.Time) bool {
	if u.SubscriptionStatus != SubscriptionTrial && u.SubscriptionStatus != SubscriptionActive {
		return false
	}
	return u.SubscriptionExpire == nil || u.SubscriptionExpire.After(now)
}

// Profile публичное представление пользователя, которое отдаёт API.
type Profile struct {
	ID                 string `json:"id"`
	Email              string `json:"email"`
	Username           string `json:"username"`
	UserType           Role   `json:"userType"`
	SuperAdmin         bool   `json:"superAdmin"`
	SubscriptionActive bool   `json:"subscriptionActive"`
}

// Profile строит публичное представление пользователя на момент now.
func (u *User) Profile(now time.Time) *Profile {
	return &Profile{
		ID:                 u.UUID,
		Email:              u.Email,
		Username:           u.Username,
		UserType:           u.Role,
		SuperAdmin:         u.SuperAdmin,
		SubscriptionActive: u.SubscriptionActive(now),
	}
}
