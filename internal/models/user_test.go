package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_SubscriptionActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name   string
		status string
		expire *time.Time
		want   bool
	}{
		{name: "trial not expired", status: SubscriptionTrial, expire: &future, want: true},
		{name: "active without expiry", status: SubscriptionActive, want: true},
		{name: "active but expired date", status: SubscriptionActive, expire: &past, want: false},
		{name: "expired status", status: SubscriptionExpired, expire: &future, want: false},
		{name: "no subscription", status: SubscriptionNone, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{SubscriptionStatus: tt.status, SubscriptionExpire: tt.expire}
			assert.Equal(t, tt.want, u.SubscriptionActive(now))
		})
	}
}

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, Role("superuser").Valid())
	assert.False(t, RoleAdmin.SelfRegistrable())
	assert.True(t, RoleVendor.Paid())
	assert.False(t, RoleFree.Paid())
}

func TestUser_Profile(t *testing.T) {
	u := &User{
		UUID:               "uid-1",
		Email:              "a@b.com",
		Username:           "alice",
		Role:               RoleVendor,
		SubscriptionStatus: SubscriptionActive,
	}
	p := u.Profile(time.Now())
	assert.Equal(t, &Profile{
		ID:                 "uid-1",
		Email:              "a@b.com",
		Username:           "alice",
		UserType:           RoleVendor,
		SubscriptionActive: true,
	}, p)
}
