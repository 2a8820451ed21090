package exchange

import (
	"context"
	"errors"
	"time"

	"github.com/go-kit/log"
	"go-token-swap"
)

type loggingService struct {
	logger log.Logger
	next   Service
}

// NewLoggingService logs every conversion with its pair and outcome
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{logger: log.With(logger, "method", "convert"), next: s}
}

func (s *loggingService) Convert(ctx context.Context, amount string, from swap.Currency, to swap.Currency) (ex swap.Exchanged, err error) {
	defer func(begin time.Time) {
		outcome := "ok"
		switch {
		case errors.Is(err, ErrRateUnavailable):
			outcome = "rate_unavailable"
		case errors.Is(err, ErrInvalidAmount):
			outcome = "invalid_amount"
		case err != nil:
			outcome = "error"
		}
		s.logger.Log(
			"pair", string(from)+"/"+string(to),
			"from_amount", amount,
			"to_amount", ex.Amount,
			"rate", ex.Rate,
			"outcome", outcome,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Convert(ctx, amount, from, to)
}
