// Package core provides amount parsing and display utilities.
//
// Amounts are plain signed numbers: the sign encodes direction and no currency
// is attached. Display always uses two decimals.
package core

import (
	"errors"
	"math"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts that are not finite numbers.
var ErrInvalidAmount = errors.New("invalid amount")

// groupedInt matches an integer part written with thousands separators.
var groupedInt = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+$`)

// ParseAmount converts a decimal string to a signed amount. Commas are
// thousands separators, as FormatAmount writes them, and must group the
// integer part in threes.
//
// Examples:
//
//	ParseAmount("12.34")    -> 12.34, nil
//	ParseAmount("1,234.50") -> 1234.5, nil
//	ParseAmount("-1200")    -> -1200, nil
//	ParseAmount("12,34")    -> 0, ErrInvalidAmount
//	ParseAmount("abc")      -> 0, ErrInvalidAmount
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	if strings.Contains(s, ",") {
		intPart, _, _ := strings.Cut(s, ".")
		if !groupedInt.MatchString(intPart) {
			return 0, ErrInvalidAmount
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return d.InexactFloat64(), nil
}

// FormatAmount renders the absolute value with thousands separators and two
// decimals, e.g. 1234.5 -> "1,234.50".
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "NaN"
	}
	return humanize.FormatFloat("#,###.##", math.Abs(v))
}

// FormatSigned is FormatAmount with a leading "-" for negative values.
func FormatSigned(v float64) string {
	if v < 0 {
		return "-" + FormatAmount(v)
	}
	return FormatAmount(v)
}
