package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	free := &User{ID: "1", UserType: "free"}
	vendor := &User{ID: "2", UserType: "vendor", SubscriptionActive: true}
	lapsed := &User{ID: "3", UserType: "business"}
	admin := &User{ID: "4", UserType: "admin"}
	super := &User{ID: "5", UserType: "admin", SuperAdmin: true}

	cases := []struct {
		name     string
		user     *User
		req      Requirement
		allowed  bool
		redirect string
	}{
		{name: "anonymous", user: nil, req: Requirement{}, redirect: "/login"},
		{name: "any role", user: free, req: Requirement{}, allowed: true},
		{name: "wrong role", user: free, req: Requirement{Roles: []string{"vendor"}}, redirect: "/dashboard"},
		{name: "matching role", user: vendor, req: Requirement{Roles: []string{"business", "vendor"}}, allowed: true},
		{name: "inactive subscription", user: lapsed, req: Requirement{Roles: []string{"business"}, ActiveSubscription: true}, redirect: "/pricing"},
		{name: "active subscription", user: vendor, req: Requirement{ActiveSubscription: true}, allowed: true},
		{name: "not super admin", user: admin, req: Requirement{Roles: []string{"admin"}, SuperAdmin: true}, redirect: "/admin/dashboard"},
		{name: "super admin", user: super, req: Requirement{Roles: []string{"admin"}, SuperAdmin: true}, allowed: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Evaluate(tc.user, tc.req)
			assert.Equal(t, tc.allowed, d.Allowed)
			assert.Equal(t, tc.redirect, d.Redirect)
			assert.Same(t, tc.user, d.User)
		})
	}
}

func TestGuard_ReadsStore(t *testing.T) {
	store := NewStore(func(context.Context) (*User, error) { return nil, nil })
	guard := NewGuard(store)
	req := Requirement{Roles: []string{"vendor"}}

	d, err := guard.Check(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, LoginPath, d.Redirect)

	vendor := &User{ID: "1", UserType: "vendor"}
	store.Set(vendor, ReasonLogin)
	d, err = guard.Check(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Same(t, vendor, d.User)
}

func TestMenu(t *testing.T) {
	paths := func(items []MenuItem) []string {
		out := make([]string, 0, len(items))
		for _, it := range items {
			out = append(out, it.Path)
		}
		return out
	}

	assert.Equal(t, []string{"/", "/pricing", "/login", "/register"}, paths(Menu(nil)))
	assert.Equal(t, []string{"/dashboard", "/leads", "/logout"}, paths(Menu(&User{UserType: "free"})))
	assert.Equal(t, []string{"/vendor/dashboard", "/vendor/products", "/vendor/orders", "/logout"},
		paths(Menu(&User{UserType: "vendor", SubscriptionActive: true})))
	assert.Contains(t, paths(Menu(&User{UserType: "business"})), "/pricing")
	assert.NotContains(t, paths(Menu(&User{UserType: "admin"})), "/admin/settings")
	assert.Contains(t, paths(Menu(&User{UserType: "admin", SuperAdmin: true})), "/admin/settings")
	assert.Equal(t, []string{"/", "/logout"}, paths(Menu(&User{UserType: "moderator"})))
}
