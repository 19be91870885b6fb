package validation

import (
	"reflect"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/zecko/internal/models"
)

// New возвращает валидатор с зарегистрированными общими тегами:
//
//	phone=<Поле>  номер телефона для страны из соседнего поля
//	price         строковая цена, которую принимает PriceToCents
//	signup_role   роль, доступная при публичной регистрации
func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", validatePhone)
	_ = v.RegisterValidation("price", validatePrice)
	_ = v.RegisterValidation("signup_role", validateSignupRole)
	return v
}

func validatePhone(fl validator.FieldLevel) bool {
	country := ""
	if param := fl.Param(); param != "" {
		parent := fl.Parent()
		if parent.Kind() == reflect.Ptr {
			parent = parent.Elem()
		}
		if f := parent.FieldByName(param); f.IsValid() && f.Kind() == reflect.String {
			country = f.String()
		}
	}
	_, err := NormalizePhone(country, fl.Field().String())
	return err == nil
}

func validatePrice(fl validator.FieldLevel) bool {
	_, err := PriceToCents(fl.Field().String())
	return err == nil
}

func validateSignupRole(fl validator.FieldLevel) bool {
	return models.Role(fl.Field().String()).SelfRegistrable()
}
