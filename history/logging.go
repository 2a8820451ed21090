package history

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"go-token-swap"
)

// loggingService decorates a history.Service with logging
type loggingService struct {
	next   Service
	logger log.Logger
}

// NewLoggingService return a new logging service
func NewLoggingService(logger log.Logger, s Service) Service {
	return &loggingService{
		next:   s,
		logger: logger,
	}
}

func (s *loggingService) Append(ctx context.Context, in swap.RecordInput) (record swap.Record, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "append",
			"id", record.ID,
			"from", in.FromCurrency,
			"to", in.ToCurrency,
			"status", record.Status,
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Append(ctx, in)
}

func (s *loggingService) Records(ctx context.Context) (records []swap.Record, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "records",
			"count", len(records),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Records(ctx)
}

func (s *loggingService) Clear(ctx context.Context) (err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "clear",
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Clear(ctx)
}
