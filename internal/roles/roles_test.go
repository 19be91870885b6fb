package roles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLandingPath(t *testing.T) {
	tests := []struct {
		role string
		want string
	}{
		{"free", "/dashboard"},
		{"business", "/business/dashboard"},
		{"vendor", "/vendor/dashboard"},
		{"admin", "/admin/dashboard"},
		{"", HomePath},
		{"Vendor", HomePath},
		{"superadmin", HomePath},
		{"vendor ", HomePath},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			got := LandingPath(tt.role)
			assert.NotEmpty(t, got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKnown(t *testing.T) {
	for _, r := range []string{"free", "business", "vendor", "admin"} {
		assert.True(t, Known(r), r)
	}
	assert.False(t, Known("guest"))
}
