package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go-token-swap"
	"golang.org/x/time/rate"
)

const DefaultURL = "https://interview.switcheo.com/prices.json"

// Service fetches the raw list of price quotes
type Service interface {
	Quotes(ctx context.Context) ([]swap.Quote, error)
}

// FetchError a transport, status or decoding failure while fetching quotes
type FetchError struct {
	// StatusCode the HTTP status, zero when no response was received
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch prices: status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch prices: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// service price feed HTTP client
type service struct {
	// url of the JSON price list
	url string

	// client for HTTP requests
	client http.Client

	// limiter spaces out calls to the upstream feed
	limiter *rate.Limiter
}

// NewService constructs a valid price feed Service. Upstream requests are at
// least minInterval apart; zero disables the limit.
func NewService(url string, timeout time.Duration, minInterval time.Duration) Service {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	return &service{
		url: url,
		client: http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Quotes loads the current price list. Dates that do not parse are kept as the
// zero time so that they never win deduplication against a dated quote.
func (s *service) Quotes(ctx context.Context) ([]swap.Quote, error) {
	type item struct {
		Currency string  `json:"currency"`
		Date     string  `json:"date"`
		Price    float64 `json:"price"`
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, &FetchError{Err: fmt.Errorf("waiting for limiter: %w", err)}
	}

	request, err := http.NewRequestWithContext(ctx, "GET", s.url, nil)
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("building http request: %w", err)}
	}
	httpResponse, err := s.client.Do(request)
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("http get: %w", err)}
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		return nil, &FetchError{StatusCode: httpResponse.StatusCode, Err: fmt.Errorf("unexpected status")}
	}

	bytes, err := io.ReadAll(httpResponse.Body)
	if err != nil {
		return nil, &FetchError{StatusCode: httpResponse.StatusCode, Err: fmt.Errorf("reading json: %w", err)}
	}

	var items []item
	if err := json.Unmarshal(bytes, &items); err != nil {
		return nil, &FetchError{StatusCode: httpResponse.StatusCode, Err: fmt.Errorf("decoding json: %w", err)}
	}

	quotes := make([]swap.Quote, 0, len(items))
	for _, it := range items {
		date, err := time.Parse(time.RFC3339Nano, it.Date)
		if err != nil {
			date = time.Time{}
		}
		quotes = append(quotes, swap.Quote{
			Currency: swap.Currency(it.Currency),
			Date:     date,
			Price:    it.Price,
		})
	}

	return quotes, nil
}
