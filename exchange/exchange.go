package exchange

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go-token-swap"
)

// Decimals fixed number of decimal places for derived amounts and rates
const Decimals = 6

// RateUnavailable displayed when either currency has no known price
const RateUnavailable = "Rate unavailable"

// Prices looks up unit prices by currency. *catalog.Snapshot satisfies Prices.
type Prices interface {
	Lookup(currency swap.Currency) (float64, bool)
}

// Rate the number of units of to received for one unit of from.
// ok is false when either price is unknown or the ratio is not finite.
func Rate(from, to swap.Currency, prices Prices) (rate float64, ok bool) {
	if prices == nil {
		return 0, false
	}
	fromPrice, ok := prices.Lookup(from)
	if !ok {
		return 0, false
	}
	toPrice, ok := prices.Lookup(to)
	if !ok {
		return 0, false
	}
	rate = fromPrice / toPrice
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, false
	}
	return rate, true
}

// DerivedAmount computes the to side amount for amount of from, formatted to
// Decimals places. The empty string means no derived value: the amount is empty
// or not a finite number, or a price is missing.
func DerivedAmount(amount string, from, to swap.Currency, prices Prices) string {
	n, ok := ParseAmount(amount)
	if !ok {
		return ""
	}
	rate, ok := Rate(from, to, prices)
	if !ok {
		return ""
	}
	result := n * rate
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return ""
	}
	return formatFixed(result)
}

// RateDisplay a human readable rate such as "1 ETH = 1800.000000 USDC",
// or RateUnavailable.
func RateDisplay(from, to swap.Currency, prices Prices) string {
	if from == "" || to == "" {
		return RateUnavailable
	}
	rate, ok := Rate(from, to, prices)
	if !ok {
		return RateUnavailable
	}
	return fmt.Sprintf("1 %s = %s %s", from, formatFixed(rate), to)
}

// Recompute returns form with ToAmount derived from the other fields.
// It must run whenever FromAmount, FromCurrency, ToCurrency or the prices change.
func Recompute(form swap.Form, prices Prices) swap.Form {
	form.ToAmount = DerivedAmount(form.FromAmount, form.FromCurrency, form.ToCurrency, prices)
	return form
}

// Flip exchanges the from and to currencies and clears both amounts so that no
// amount computed with the old rate is shown.
func Flip(form swap.Form) swap.Form {
	return swap.Form{
		FromCurrency: form.ToCurrency,
		ToCurrency:   form.FromCurrency,
	}
}

// ParseAmount parses a user entered amount. ok is false for empty, malformed,
// NaN and infinite amounts.
func ParseAmount(amount string) (float64, bool) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(amount, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func formatFixed(f float64) string {
	return strconv.FormatFloat(f, 'f', Decimals, 64)
}
