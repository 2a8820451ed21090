package catalog

import (
	"go-token-swap"
)

// Build deduplicates quotes so that each currency appears once, keeping the quote
// with the latest date. Equal dates keep the quote seen first. Each currency keeps
// the output position of its first appearance in quotes.
func Build(quotes []swap.Quote) []swap.Quote {
	result := make([]swap.Quote, 0, len(quotes))
	position := make(map[swap.Currency]int, len(quotes))

	for _, q := range quotes {
		i, ok := position[q.Currency]
		if !ok {
			position[q.Currency] = len(result)
			result = append(result, q)
			continue
		}
		if q.Date.After(result[i].Date) {
			result[i] = q
		}
	}
	return result
}

// Positive returns the quotes with a price above zero. Build does not filter
// prices, callers decide which quotes are tradable.
func Positive(quotes []swap.Quote) []swap.Quote {
	result := make([]swap.Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Price > 0 {
			result = append(result, q)
		}
	}
	return result
}

// Snapshot an immutable, indexed catalog. A Snapshot is never modified after New
// so it is safe for concurrent reads; a refresh produces a new Snapshot.
type Snapshot struct {
	quotes []swap.Quote
	index  map[swap.Currency]float64
}

// New indexes already deduplicated quotes. If a currency appears more than once
// the first quote wins.
func New(quotes []swap.Quote) *Snapshot {
	s := &Snapshot{
		quotes: make([]swap.Quote, len(quotes)),
		index:  make(map[swap.Currency]float64, len(quotes)),
	}
	copy(s.quotes, quotes)
	for _, q := range quotes {
		if _, ok := s.index[q.Currency]; !ok {
			s.index[q.Currency] = q.Price
		}
	}
	return s
}

// Lookup returns the unit price of currency. ok is false when the currency is
// unknown, which callers must treat as rate unavailable, never as a zero price.
func (s *Snapshot) Lookup(currency swap.Currency) (price float64, ok bool) {
	if s == nil {
		return 0, false
	}
	price, ok = s.index[currency]
	return price, ok
}

// Quotes returns a copy of the indexed quotes in catalog order
func (s *Snapshot) Quotes() []swap.Quote {
	if s == nil {
		return nil
	}
	result := make([]swap.Quote, len(s.quotes))
	copy(result, s.quotes)
	return result
}

// Len number of currencies in the snapshot
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.quotes)
}
