// Package validation содержит общие правила проверки пользовательского ввода:
// телефоны по странам, цены и кастомные теги валидатора. Все формы и
// обработчики используют эти правила, а не собственные копии шаблонов.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPhone номер не соответствует формату страны.
var ErrInvalidPhone = errors.New("invalid phone number")

// ErrUnsupportedCountry для страны нет правила проверки номера.
var ErrUnsupportedCountry = errors.New("unsupported country")

type phoneRule struct {
	callingCode string
	trunk       string         // национальный префикс, который отбрасывается
	national    *regexp.Regexp // номер без кода страны и префикса
	groups      []int          // группировка цифр для отображения
}

var phoneRules = map[string]phoneRule{
	"US": {callingCode: "1", trunk: "1", national: regexp.MustCompile(`^[2-9]\d{2}[2-9]\d{6}$`), groups: []int{3, 3, 4}},
	"CA": {callingCode: "1", trunk: "1", national: regexp.MustCompile(`^[2-9]\d{2}[2-9]\d{6}$`), groups: []int{3, 3, 4}},
	"GB": {callingCode: "44", trunk: "0", national: regexp.MustCompile(`^(7\d{9}|[1-3]\d{8,9})$`), groups: []int{4, 6}},
	"DE": {callingCode: "49", trunk: "0", national: regexp.MustCompile(`^[1-9]\d{9,10}$`), groups: []int{3, 8}},
	"IN": {callingCode: "91", trunk: "0", national: regexp.MustCompile(`^[6-9]\d{9}$`), groups: []int{5, 5}},
	"AU": {callingCode: "61", trunk: "0", national: regexp.MustCompile(`^[2-478]\d{8}$`), groups: []int{1, 4, 4}},
}

// SupportedCountries возвращает коды стран, для которых есть правила.
func SupportedCountries() []string {
	return []string{"AU", "CA", "DE", "GB", "IN", "US"}
}

var phoneNoise = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

func nationalNumber(country, raw string) (phoneRule, string, error) {
	rule, ok := phoneRules[strings.ToUpper(country)]
	if !ok {
		return phoneRule{}, "", fmt.Errorf("%w: %q", ErrUnsupportedCountry, country)
	}
	digits := phoneNoise.Replace(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(digits, "+"):
		if !strings.HasPrefix(digits, "+"+rule.callingCode) {
			return rule, "", ErrInvalidPhone
		}
		digits = strings.TrimPrefix(digits, "+"+rule.callingCode)
	case strings.HasPrefix(digits, "00"+rule.callingCode):
		digits = strings.TrimPrefix(digits, "00"+rule.callingCode)
	case rule.trunk != "" && strings.HasPrefix(digits, rule.trunk) && !rule.national.MatchString(digits):
		digits = strings.TrimPrefix(digits, rule.trunk)
	}
	if !rule.national.MatchString(digits) {
		return rule, "", ErrInvalidPhone
	}
	return rule, digits, nil
}

// NormalizePhone приводит номер к E.164 (+<код страны><номер>).
func NormalizePhone(country, raw string) (string, error) {
	rule, national, err := nationalNumber(country, raw)
	if err != nil {
		return "", err
	}
	return "+" + rule.callingCode + national, nil
}

// FormatPhone возвращает номер в виде для отображения, например "+1 (415) 555-2671".
func FormatPhone(country, raw string) (string, error) {
	rule, national, err := nationalNumber(country, raw)
	if err != nil {
		return "", err
	}
	if rule.callingCode == "1" {
		return fmt.Sprintf("+1 (%s) %s-%s", national[:3], national[3:6], national[6:]), nil
	}
	parts := make([]string, 0, len(rule.groups)+1)
	parts = append(parts, "+"+rule.callingCode)
	rest := national
	for i, n := range rule.groups {
		if i == len(rule.groups)-1 || n >= len(rest) {
			parts = append(parts, rest)
			rest = ""
			break
		}
		parts = append(parts, rest[:n])
		rest = rest[n:]
	}
	return strings.Join(parts, " "), nil
}
