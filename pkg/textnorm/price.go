package textnorm

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// DefaultCurrency is the symbol both catalogs print in front of prices.
const DefaultCurrency = "￥"

// ParsePrice extracts the integer amount from a formatted price such as
// "￥1,234". Every non-digit rune is discarded; an empty result parses as 0.
func ParsePrice(s string) (int, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, width.Narrow.String(s))
	if digits == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", s, err)
	}
	return n, nil
}

// AddCurrencyPrefix puts currency in front of a non-empty value that does not
// already start with it.
func AddCurrencyPrefix(s, currency string) string {
	if s == "" || strings.HasPrefix(s, currency) {
		return s
	}
	return currency + s
}
