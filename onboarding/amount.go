// ABOUTME: Monetary amount parsing for proposal totals
// ABOUTME: Accepts thousands separators and derives the half deposit
package onboarding

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPattern is a plain decimal: optional sign, digits, optional fraction.
var amountPattern = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+)?$`)

// ParseAmount parses a submitted total such as "1,200.50". Thousands separators are
// dropped; anything that is not a plain decimal number is rejected.
func ParseAmount(raw string) (float64, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if !amountPattern.MatchString(s) {
		return 0, &InvalidAmountError{Value: raw}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &InvalidAmountError{Value: raw, Err: err}
	}
	if math.IsInf(v, 0) {
		return 0, &InvalidAmountError{Value: raw}
	}
	return v, nil
}

var two = decimal.NewFromInt(2)

// Deposit is half the total rounded to cents, halves away from zero. The halving is
// done on the decimal value so 2.01 gives 1.01.
func Deposit(total float64) float64 {
	return decimal.NewFromFloat(total).Div(two).Round(2).InexactFloat64()
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
