package validation

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidPrice строка не является неотрицательной ценой с не более чем двумя знаками после точки.
var ErrInvalidPrice = errors.New("invalid price")

// PriceToCents переводит цену вида "1,234.5" или "$12.99" в центы.
func PriceToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, ErrInvalidPrice
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if hasFrac && (frac == "" || len(frac) > 2) {
		return 0, ErrInvalidPrice
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseUint(whole, 10, 63)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	cents, err := strconv.ParseUint(frac, 10, 8)
	if err != nil {
		return 0, ErrInvalidPrice
	}
	if units > (math.MaxInt64-cents)/100 {
		return 0, ErrInvalidPrice
	}
	return int64(units)*100 + int64(cents), nil
}

// FormatCents возвращает сумму в центах в виде "12.34".
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	frac := strconv.FormatInt(cents%100, 10)
	if len(frac) < 2 {
		frac = "0" + frac
	}
	return sign + strconv.FormatInt(cents/100, 10) + "." + frac
}
