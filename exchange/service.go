package exchange

import (
	"context"
	"errors"
	"fmt"

	"go-token-swap"
)

var (
	// ErrRateUnavailable returned when either currency has no known price
	ErrRateUnavailable = errors.New("rate unavailable")
	// ErrInvalidAmount returned when an amount cannot be converted
	ErrInvalidAmount = errors.New("invalid amount")
)

// Service interface for converting an amount from one currency to another
type Service interface {
	Convert(ctx context.Context, amount string, from swap.Currency, to swap.Currency) (swap.Exchanged, error)
}

// PricesFunc returns the prices to convert with.
// Implementations must return a snapshot that is safe for concurrent reads.
type PricesFunc func(ctx context.Context) (Prices, error)

type service struct {
	// prices source of the current price snapshot
	prices PricesFunc
}

// NewService constructs a valid Service
func NewService(prices PricesFunc) Service {
	return &service{
		prices: prices,
	}
}

// Convert computes a conversion from one currency to another with the current prices
func (s *service) Convert(ctx context.Context, amount string, from swap.Currency, to swap.Currency) (swap.Exchanged, error) {
	prices, err := s.prices(ctx)
	if err != nil {
		return swap.Exchanged{}, fmt.Errorf("convert from [%v]: %w", from, err)
	}

	rate, ok := Rate(from, to, prices)
	if !ok {
		return swap.Exchanged{}, fmt.Errorf("convert [%v -> %v]: %w", from, to, ErrRateUnavailable)
	}

	derived := DerivedAmount(amount, from, to, prices)
	if derived == "" {
		return swap.Exchanged{}, fmt.Errorf("convert amount %q: %w", amount, ErrInvalidAmount)
	}

	return swap.Exchanged{Rate: rate, Amount: derived}, nil
}
