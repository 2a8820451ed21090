package prices

import (
	"context"
	"time"

	"github.com/go-kit/log"
	"go-token-swap"
)

// loggingService decorates a prices.Service with logging
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

func (s *loggingService) Quotes(ctx context.Context) (quotes []swap.Quote, err error) {
	defer func(begin time.Time) {
		s.logger.Log(
			"method", "quotes",
			"count", len(quotes),
			"took", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Quotes(ctx)
}
