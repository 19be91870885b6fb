// Package jwt реализует выпуск и разбор сессионных JWT токенов Zecko.
//
// Токен несёт идентификатор пользователя (sub), его роль и уникальный jti,
// по которому токен можно отозвать до истечения срока жизни.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims описывает данные, хранящиеся в JWT.
type CustomClaims struct {
	Role string `json:"role"` // Роль пользователя
	jwt.RegisteredClaims
}

// UserUID возвращает идентификатор пользователя из стандартного поля sub.
func (c *CustomClaims) UserUID() string {
	return c.Subject
}

// Remaining возвращает оставшееся время жизни токена относительно now.
func (c *CustomClaims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	d := c.ExpiresAt.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Maker описывает выпуск и разбор токенов.
type Maker interface {
	GenerateToken(userUID, role string) (string, *CustomClaims, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker на HMAC-SHA256 с общим секретом.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
	issuer    string
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		issuer:    "zecko-auth",
	}
}
