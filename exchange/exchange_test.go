package exchange

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"go-token-swap"
	"go-token-swap/catalog"
)

func testPrices() *catalog.Snapshot {
	return catalog.New([]swap.Quote{
		{Currency: "ETH", Price: 1800},
		{Currency: "USDC", Price: 1},
		{Currency: "ATOM", Price: 7.5},
		{Currency: "FREE", Price: 0},
	})
}

func TestDerivedAmount(t *testing.T) {
	prices := testPrices()

	type args struct {
		amount string
		from   swap.Currency
		to     swap.Currency
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{"eth -> usdc", args{"1", "ETH", "USDC"}, "1800.000000"},
		{"usdc -> eth", args{"900", "USDC", "ETH"}, "0.500000"},
		{"atom -> eth", args{"2", "ATOM", "ETH"}, "0.008333"},
		{"same currency", args{"3.25", "ETH", "ETH"}, "3.250000"},
		{"surrounding space", args{" 2 ", "ETH", "USDC"}, "3600.000000"},
		{"zero amount", args{"0", "ETH", "USDC"}, "0.000000"},
		{"empty amount", args{"", "ETH", "USDC"}, ""},
		{"garbage amount", args{"abc", "ETH", "USDC"}, ""},
		{"nan amount", args{"NaN", "ETH", "USDC"}, ""},
		{"infinite amount", args{"Inf", "ETH", "USDC"}, ""},
		{"unknown from", args{"1", "DOGE", "USDC"}, ""},
		{"unknown to", args{"1", "ETH", "DOGE"}, ""},
		{"empty currency", args{"1", "", "USDC"}, ""},
		{"zero priced destination", args{"1", "ETH", "FREE"}, ""},
		{"zero priced source", args{"1", "FREE", "ETH"}, "0.000000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DerivedAmount(tt.args.amount, tt.args.from, tt.args.to, prices)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDerivedAmount_ScaleLinear(t *testing.T) {
	prices := testPrices()
	pairs := [][2]swap.Currency{{"ETH", "USDC"}, {"USDC", "ETH"}, {"ATOM", "ETH"}, {"ETH", "ATOM"}}
	amounts := []float64{0.1, 1, 3.3, 17.25, 12345.678}

	for _, pair := range pairs {
		for _, a := range amounts {
			single := DerivedAmount(strconv.FormatFloat(a, 'f', -1, 64), pair[0], pair[1], prices)
			double := DerivedAmount(strconv.FormatFloat(2*a, 'f', -1, 64), pair[0], pair[1], prices)

			s, err := strconv.ParseFloat(single, 64)
			assert.NoError(t, err)
			d, err := strconv.ParseFloat(double, 64)
			assert.NoError(t, err)
			assert.InDelta(t, 2*s, d, 2e-6, "%v %v -> %v", a, pair[0], pair[1])
		}
	}
}

func TestRate(t *testing.T) {
	prices := testPrices()

	rate, ok := Rate("ETH", "USDC", prices)
	assert.True(t, ok)
	assert.Equal(t, 1800.0, rate)

	_, ok = Rate("ETH", "DOGE", prices)
	assert.False(t, ok)

	_, ok = Rate("ETH", "USDC", nil)
	assert.False(t, ok)

	var missing *catalog.Snapshot
	_, ok = Rate("ETH", "USDC", missing)
	assert.False(t, ok)
}

func TestRateDisplay(t *testing.T) {
	prices := testPrices()

	assert.Equal(t, "1 ETH = 1800.000000 USDC", RateDisplay("ETH", "USDC", prices))
	assert.Equal(t, "1 USDC = 0.000556 ETH", RateDisplay("USDC", "ETH", prices))
	assert.Equal(t, RateUnavailable, RateDisplay("ETH", "DOGE", prices))
	assert.Equal(t, RateUnavailable, RateDisplay("", "USDC", prices))
	assert.Equal(t, RateUnavailable, RateDisplay("ETH", "", prices))
}

func TestRecompute(t *testing.T) {
	form := swap.Form{FromCurrency: "ETH", ToCurrency: "USDC", FromAmount: "1", ToAmount: "stale"}

	got := Recompute(form, testPrices())
	assert.Equal(t, "1800.000000", got.ToAmount)
	assert.Equal(t, "stale", form.ToAmount, "input is not modified")

	refreshed := catalog.New([]swap.Quote{{Currency: "ETH", Price: 1900}, {Currency: "USDC", Price: 1}})
	assert.Equal(t, "1900.000000", Recompute(got, refreshed).ToAmount)

	gone := catalog.New([]swap.Quote{{Currency: "USDC", Price: 1}})
	assert.Equal(t, "", Recompute(got, gone).ToAmount)
}

func TestFlip(t *testing.T) {
	form := swap.Form{FromCurrency: "ETH", ToCurrency: "USDC", FromAmount: "1", ToAmount: "1800.000000"}

	got := Flip(form)

	assert.Equal(t, swap.Form{FromCurrency: "USDC", ToCurrency: "ETH"}, got)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in     string
		want   float64
		wantOK bool
	}{
		{"1", 1, true},
		{"0.5", 0.5, true},
		{"-2", -2, true},
		{"1e3", 1000, true},
		{"", 0, false},
		{"   ", 0, false},
		{"1,000", 0, false},
		{"+Inf", 0, false},
		{"nan", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
