package swap

import "time"

// Currency a token symbol such as ETH or USDC
type Currency string

// Quote a single dated price observation for one currency.
// Quotes are treated as immutable once ingested.
type Quote struct {
	Currency Currency  `json:"currency"`
	Date     time.Time `json:"date"`
	Price    float64   `json:"price"`
}

// Status outcome of a swap attempt
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// RecordInput what a caller supplies when appending to the history log.
// The log assigns ID and Timestamp.
type RecordInput struct {
	FromCurrency Currency
	ToCurrency   Currency
	FromAmount   string
	ToAmount     string
	Status       Status
	Rate         string
}

// Record an immutable entry in the swap history log
type Record struct {
	ID           string   `json:"id"`
	FromCurrency Currency `json:"fromCurrency"`
	ToCurrency   Currency `json:"toCurrency"`
	FromAmount   string   `json:"fromAmount"`
	ToAmount     string   `json:"toAmount"`
	Status       Status   `json:"status"`
	// Timestamp epoch milliseconds at insertion
	Timestamp int64  `json:"timestamp"`
	Rate      string `json:"rate,omitempty"`
}

// Form the swap form fields. ToAmount is derived from the other three fields
// and the current catalog, it is never edited directly.
type Form struct {
	FromCurrency Currency `json:"fromCurrency"`
	ToCurrency   Currency `json:"toCurrency"`
	FromAmount   string   `json:"fromAmount"`
	ToAmount     string   `json:"toAmount"`
}

// Exchanged result of converting an amount
type Exchanged struct {
	Rate   float64
	Amount string
}

// Notification a fire-and-forget signal about a finished swap attempt
type Notification struct {
	Status      Status `json:"status"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Record      Record `json:"record"`
}
