package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTMaker_GenerateAndParseToken(t *testing.T) {
	tokenTTL := 15 * time.Minute
	maker := NewJWTMaker("test_secret_key_1234567890", tokenTTL)

	tests := []struct {
		name    string
		userUID string
		role    string
	}{
		{name: "free user", userUID: "11111111-1111-1111-1111-111111111111", role: "free"},
		{name: "vendor", userUID: "22222222-2222-2222-2222-222222222222", role: "vendor"},
		{name: "admin", userUID: "33333333-3333-3333-3333-333333333333", role: "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, issued, err := maker.GenerateToken(tt.userUID, tt.role)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.userUID, claims.UserUID())
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, issued.ID, claims.ID)
			assert.NotEmpty(t, claims.ID)
			assert.WithinDuration(t, time.Now().Add(tokenTTL), claims.ExpiresAt.Time, time.Second)
			assert.InDelta(t, tokenTTL.Seconds(), claims.Remaining(time.Now()).Seconds(), 2)
		})
	}
}

func TestJWTMaker_TokenIDsAreUnique(t *testing.T) {
	maker := NewJWTMaker("secret", time.Minute)
	_, a, err := maker.GenerateToken("uid", "free")
	require.NoError(t, err)
	_, b, err := maker.GenerateToken("uid", "free")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestJWTMaker_ParseToken_InvalidTokens(t *testing.T) {
	secretKey := "test_secret_key_1234567890"
	maker := NewJWTMaker(secretKey, 15*time.Minute)

	validToken, _, err := maker.GenerateToken("uid", "free")
	require.NoError(t, err)

	expired, _, err := NewJWTMaker(secretKey, -time.Hour).GenerateToken("uid", "free")
	require.NoError(t, err)

	wrongSecret, _, err := NewJWTMaker("wrong_secret_key", 15*time.Minute).GenerateToken("uid", "free")
	require.NoError(t, err)

	noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, &CustomClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "id",
			Subject:   "uid",
			Issuer:    "zecko-auth",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "malformed token", token: "invalid.token.here"},
		{name: "expired token", token: expired},
		{name: "wrong secret key", token: wrongSecret},
		{name: "tampered token", token: validToken + "tampered"},
		{name: "none algorithm", token: noneAlg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestCustomClaims_RemainingNeverNegative(t *testing.T) {
	c := &CustomClaims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}
	assert.Equal(t, time.Duration(0), c.Remaining(time.Now()))
	assert.Equal(t, time.Duration(0), (&CustomClaims{}).Remaining(time.Now()))
}
