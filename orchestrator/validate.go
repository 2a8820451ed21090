package orchestrator

import (
	"sort"
	"strings"

	"go-token-swap"
	"go-token-swap/exchange"
)

// Form field names used as validation error keys
const (
	FieldFromCurrency = "fromCurrency"
	FieldToCurrency   = "toCurrency"
	FieldFromAmount   = "fromAmount"
)

// ValidationError one message per invalid field
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid swap: " + strings.Join(parts, "; ")
}

// Validate checks every field and reports all failures together.
// It returns nil when the form can be submitted.
func Validate(form swap.Form) *ValidationError {
	fields := map[string]string{}

	if form.FromCurrency == "" {
		fields[FieldFromCurrency] = "Please select a token to swap from"
	}
	if form.ToCurrency == "" {
		fields[FieldToCurrency] = "Please select a token to swap to"
	}
	if form.FromAmount == "" {
		fields[FieldFromAmount] = "Please enter an amount"
	} else if n, ok := exchange.ParseAmount(form.FromAmount); !ok || n <= 0 {
		fields[FieldFromAmount] = "Amount must be a valid positive number"
	}
	if form.FromCurrency != "" && form.ToCurrency != "" && form.FromCurrency == form.ToCurrency {
		fields[FieldToCurrency] = "From and To tokens must be different"
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
