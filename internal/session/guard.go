package session

import (
	"context"
	"slices"

	"github.com/magabrotheeeer/zecko/internal/roles"
)

// Страницы, на которые Guard отправляет пользователя.
const (
	LoginPath   = "/login"
	PricingPath = "/pricing"
)

// Requirement условия доступа к защищённой странице. Пустой Roles пропускает любую роль.
type Requirement struct {
	Roles              []string
	SuperAdmin         bool
	ActiveSubscription bool
}

// Decision результат проверки доступа. При Allowed == false Redirect содержит путь перехода.
type Decision struct {
	Allowed  bool
	Redirect string
	User     *User
}

// LandingFor возвращает начальную страницу пользователя u.
func LandingFor(u *User) string {
	return roles.LandingPath(u.Role())
}

// Evaluate решает, пускать ли пользователя u на страницу с требованием req.
func Evaluate(u *User, req Requirement) Decision {
	switch {
	case u == nil:
		return Decision{Redirect: LoginPath}
	case len(req.Roles) > 0 && !slices.Contains(req.Roles, u.UserType):
		return Decision{Redirect: LandingFor(u), User: u}
	case req.SuperAdmin && !u.SuperAdmin:
		return Decision{Redirect: LandingFor(u), User: u}
	case req.ActiveSubscription && !u.SubscriptionActive:
		return Decision{Redirect: PricingPath, User: u}
	}
	return Decision{Allowed: true, User: u}
}

// Guard проверяет доступ по записи из Store.
type Guard struct {
	store *Store
}

// NewGuard создаёт Guard поверх store.
func NewGuard(store *Store) *Guard {
	return &Guard{store: store}
}

// Check загружает текущего пользователя и проверяет требование req.
func (g *Guard) Check(ctx context.Context, req Requirement) (Decision, error) {
	u, err := g.store.Current(ctx)
	if err != nil {
		return Decision{}, err
	}
	return Evaluate(u, req), nil
}

// Menu возвращает пункты навигации для текущего пользователя.
func (g *Guard) Menu(ctx context.Context) ([]MenuItem, error) {
	u, err := g.store.Current(ctx)
	if err != nil {
		return nil, err
	}
	return Menu(u), nil
}

// MenuItem пункт навигации.
type MenuItem struct {
	Label string
	Path  string
}

// Menu строит навигацию по роли пользователя. Для nil возвращаются публичные пункты.
func Menu(u *User) []MenuItem {
	if u == nil {
		return []MenuItem{
			{Label: "Home", Path: roles.HomePath},
			{Label: "Pricing", Path: PricingPath},
			{Label: "Log in", Path: LoginPath},
			{Label: "Sign up", Path: "/register"},
		}
	}

	items := []MenuItem{{Label: "Dashboard", Path: roles.LandingPath(u.UserType)}}
	switch u.UserType {
	case "free":
		items = append(items, MenuItem{Label: "My leads", Path: "/leads"})
	case "business":
		items = append(items,
			MenuItem{Label: "Leads", Path: "/business/leads"},
			MenuItem{Label: "Proposals", Path: "/business/proposals"})
	case "vendor":
		items = append(items,
			MenuItem{Label: "Products", Path: "/vendor/products"},
			MenuItem{Label: "Orders", Path: "/vendor/orders"})
	case "admin":
		items = append(items, MenuItem{Label: "Users", Path: "/admin/users"})
		if u.SuperAdmin {
			items = append(items, MenuItem{Label: "Settings", Path: "/admin/settings"})
		}
	}
	if (u.UserType == "business" || u.UserType == "vendor") && !u.SubscriptionActive {
		items = append(items, MenuItem{Label: "Upgrade", Path: PricingPath})
	}
	return append(items, MenuItem{Label: "Log out", Path: "/logout"})
}
