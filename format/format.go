// Package format renders history entries for display.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go-token-swap"
)

const TokenIconBaseURL = "https://raw.githubusercontent.com/Switcheo/token-icons/main/tokens"

// tokenNames symbols whose icon file uses different casing
var tokenNames = map[swap.Currency]string{
	"STEVMOS": "stEVMOS",
	"RATOM":   "rATOM",
	"STOSMO":  "stOSMO",
	"STATOM":  "stATOM",
	"STLUNA":  "stLUNA",
}

// NormalizeTokenName the icon name of a currency
func NormalizeTokenName(c swap.Currency) string {
	if name, ok := tokenNames[c]; ok {
		return name
	}
	return string(c)
}

// TokenIconURL the SVG icon location of a currency
func TokenIconURL(c swap.Currency) string {
	return fmt.Sprintf("%s/%s.svg", TokenIconBaseURL, NormalizeTokenName(c))
}

// Amount groups the digits of amount with commas, integer digits in threes from
// the right and fractional digits in threes from the left, so "1234.5678" becomes
// "1,234.567,8". Trailing fractional zeros are dropped. Anything that is not a
// number renders as "0".
func Amount(amount string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return "0"
	}

	s := d.String()
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	integer, fraction, _ := strings.Cut(s, ".")

	var b strings.Builder
	b.WriteString(sign)
	for i, r := range integer {
		if i > 0 && (len(integer)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if fraction != "" {
		b.WriteByte('.')
		for i, r := range fraction {
			if i > 0 && i%3 == 0 {
				b.WriteByte(',')
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Timestamp describes an epoch millisecond timestamp relative to now, falling
// back to a calendar date after a week.
func Timestamp(ms int64, now time.Time) string {
	if ms <= 0 {
		return "Invalid date"
	}
	t := time.UnixMilli(ms)
	diff := now.Sub(t)

	mins := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return plural(mins, "min")
	case hours < 24:
		return plural(hours, "hour")
	case days < 7:
		return plural(days, "day")
	}
	return t.In(now.Location()).Format("Jan 2, 2006")
}

func plural(n int, unit string) string {
	if n > 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}

// Entry a history record prepared for display
type Entry struct {
	swap.Record
	DisplayFromAmount string `json:"displayFromAmount"`
	DisplayToAmount   string `json:"displayToAmount"`
	DisplayTime       string `json:"displayTime"`
	FromIcon          string `json:"fromIcon"`
	ToIcon            string `json:"toIcon"`
}

// Entries decorates records for display at now
func Entries(records []swap.Record, now time.Time) []Entry {
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, Entry{
			Record:            r,
			DisplayFromAmount: Amount(r.FromAmount),
			DisplayToAmount:   Amount(r.ToAmount),
			DisplayTime:       Timestamp(r.Timestamp, now),
			FromIcon:          TokenIconURL(r.FromCurrency),
			ToIcon:            TokenIconURL(r.ToCurrency),
		})
	}
	return entries
}
