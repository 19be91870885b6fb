// Package roles сопоставляет тип учётной записи с начальной страницей после входа.
package roles

// HomePath страница для неизвестных ролей.
const HomePath = "/"

var landing = map[string]string{
	"free":     "/dashboard",
	"business": "/business/dashboard",
	"vendor":   "/vendor/dashboard",
	"admin":    "/admin/dashboard",
}

// LandingPath возвращает страницу, на которую попадает пользователь с ролью role.
// Для любой неизвестной строки возвращается HomePath.
func LandingPath(role string) string {
	if p, ok := landing[role]; ok {
		return p
	}
	return HomePath
}

// Known сообщает, есть ли для роли отдельная страница.
func Known(role string) bool {
	_, ok := landing[role]
	return ok
}
