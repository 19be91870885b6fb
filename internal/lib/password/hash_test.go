package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{name: "regular password", password: "password123"},
		{name: "special chars", password: "p@ssw0rd!@#$%^&*()"},
		{name: "too short", password: "short", wantErr: ErrTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := Hash(tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)
			assert.NoError(t, Compare(hash, tt.password))
		})
	}
}

func TestCompare(t *testing.T) {
	hash, err := Hash("correct_password")
	require.NoError(t, err)

	assert.NoError(t, Compare(hash, "correct_password"))
	assert.ErrorIs(t, Compare(hash, "wrong_password"), ErrMismatch)
	assert.ErrorIs(t, Compare(hash, ""), ErrMismatch)

	err = Compare("not-a-bcrypt-hash", "correct_password")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMismatch)
}
