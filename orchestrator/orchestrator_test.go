package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-token-swap"
	"go-token-swap/history"
)

type recordingNotifier struct {
	lock          sync.Mutex
	notifications []swap.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, notification swap.Notification) {
	n.lock.Lock()
	defer n.lock.Unlock()
	n.notifications = append(n.notifications, notification)
}

func (n *recordingNotifier) all() []swap.Notification {
	n.lock.Lock()
	defer n.lock.Unlock()
	return append([]swap.Notification(nil), n.notifications...)
}

var testQuotes = []swap.Quote{
	{Currency: "ETH", Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Price: 1700},
	{Currency: "ETH", Date: time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC), Price: 1800},
	{Currency: "USDC", Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Price: 1},
	{Currency: "DEAD", Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Price: 0},
}

type fixture struct {
	o        *Orchestrator
	history  history.Service
	notifier *recordingNotifier
}

func newFixture(settler Settler) fixture {
	h := history.NewService(history.NewMemStore(), log.NewNopLogger())
	n := &recordingNotifier{}
	o := New(Config{
		History:  h,
		Settler:  settler,
		Notifier: n,
	})
	o.ApplyQuotes(testQuotes)
	return fixture{o: o, history: h, notifier: n}
}

func fill(o *Orchestrator) {
	o.SetFromCurrency("ETH")
	o.SetToCurrency("USDC")
	o.SetFromAmount("1")
}

func TestOrchestrator_EditsRecompute(t *testing.T) {
	f := newFixture(NewDeterministic())
	o := f.o

	o.SetFromAmount("2")
	assert.Equal(t, "", o.Form().ToAmount)

	o.SetFromCurrency("ETH")
	assert.Equal(t, "", o.Form().ToAmount)

	form := o.SetToCurrency("USDC")
	assert.Equal(t, "3600.000000", form.ToAmount)

	form = o.SetFromAmount("1")
	assert.Equal(t, "1800.000000", form.ToAmount)

	form = o.SetToCurrency("DEAD")
	assert.Equal(t, "", form.ToAmount, "zero priced tokens are not tradable")
}

func TestOrchestrator_CatalogRefreshRecomputes(t *testing.T) {
	f := newFixture(NewDeterministic())
	fill(f.o)
	require.Equal(t, "1800.000000", f.o.Form().ToAmount)

	f.o.ApplyQuotes([]swap.Quote{{Currency: "ETH", Price: 2000}, {Currency: "USDC", Price: 1}})
	assert.Equal(t, "2000.000000", f.o.Form().ToAmount)

	f.o.OnFeed([]swap.Quote{{Currency: "USDC", Price: 1}}, nil)
	assert.Equal(t, "", f.o.Form().ToAmount)
}

func TestOrchestrator_SubmitSuccess(t *testing.T) {
	f := newFixture(NewDeterministic(swap.StatusSuccess))
	fill(f.o)

	result, err := f.o.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, swap.StatusSuccess, result.Record.Status)
	assert.Equal(t, "1 ETH = 1800.000000 USDC", result.Record.Rate)
	assert.Equal(t, "1", result.Record.FromAmount)
	assert.Equal(t, "1800.000000", result.Record.ToAmount)

	records, err := f.history.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, result.Record, records[0])

	notifications := f.notifier.all()
	require.Len(t, notifications, 1)
	assert.Equal(t, "Swap Successful!", notifications[0].Title)
	assert.Equal(t, "Successfully swapped 1 ETH for 1800.000000 USDC", notifications[0].Description)

	assert.Equal(t, swap.Form{FromCurrency: "ETH", ToCurrency: "USDC"}, f.o.Form())
	assert.Equal(t, "idle", f.o.View().State)
}

func TestOrchestrator_SubmitFailure(t *testing.T) {
	f := newFixture(NewDeterministic(swap.StatusFailed))
	fill(f.o)

	result, err := f.o.Submit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, swap.StatusFailed, result.Record.Status)
	assert.Empty(t, result.Record.Rate)

	notifications := f.notifier.all()
	require.Len(t, notifications, 1)
	assert.Equal(t, swap.StatusFailed, notifications[0].Status)
	assert.Equal(t, "Swap Failed", notifications[0].Title)

	assert.Equal(t, swap.Form{FromCurrency: "ETH", ToCurrency: "USDC", FromAmount: "1", ToAmount: "1800.000000"}, f.o.Form())
}

func TestOrchestrator_SettlementError(t *testing.T) {
	f := newFixture(SettlerFunc(func(context.Context, swap.Form) (swap.Status, error) {
		return "", errors.New("exchange offline")
	}))
	fill(f.o)

	result, err := f.o.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, swap.StatusFailed, result.Record.Status)
}

func TestOrchestrator_SubmitValidation(t *testing.T) {
	f := newFixture(NewDeterministic())
	f.o.SetFromCurrency("ETH")
	f.o.SetToCurrency("ETH")
	f.o.SetFromAmount("1")

	_, err := f.o.Submit(context.Background())

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, map[string]string{FieldToCurrency: "From and To tokens must be different"}, verr.Fields)
	assert.Equal(t, verr.Fields, f.o.View().Errors)

	records, _ := f.history.Records(context.Background())
	assert.Empty(t, records)
	assert.Empty(t, f.notifier.all())

	// editing the field clears its error
	f.o.SetToCurrency("USDC")
	assert.Empty(t, f.o.View().Errors)
}

func TestOrchestrator_SubmitInProgress(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	f := newFixture(SettlerFunc(func(context.Context, swap.Form) (swap.Status, error) {
		close(entered)
		<-release
		return swap.StatusSuccess, nil
	}))
	fill(f.o)

	done := make(chan Result)
	go func() {
		result, _ := f.o.Submit(context.Background())
		done <- result
	}()
	<-entered

	_, err := f.o.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInProgress)
	assert.Equal(t, "Processing...", f.o.View().Action)
	assert.True(t, f.o.View().Disabled)

	// edits during submission do not change the recorded swap
	f.o.SetFromAmount("5")

	close(release)
	result := <-done
	assert.Equal(t, "1", result.Record.FromAmount)
	assert.Equal(t, "1800.000000", result.Record.ToAmount)

	records, _ := f.history.Records(context.Background())
	assert.Len(t, records, 1)
	assert.Equal(t, "Swap Tokens", f.o.View().Action)
}

func TestOrchestrator_TokensUnavailable(t *testing.T) {
	o := New(Config{
		History:  history.NewService(history.NewMemStore(), log.NewNopLogger()),
		Settler:  NewDeterministic(),
		Notifier: &recordingNotifier{},
	})
	fill(o)

	assert.Equal(t, "Loading tokens...", o.View().Action)
	_, err := o.Submit(context.Background())
	assert.ErrorIs(t, err, ErrTokensUnavailable)

	o.ApplyQuotes(testQuotes)
	o.OnFeed(nil, errors.New("status 500"))

	view := o.View()
	assert.Equal(t, "Failed to load tokens", view.Action)
	assert.True(t, view.Disabled)
	_, err = o.Submit(context.Background())
	assert.ErrorIs(t, err, ErrTokensUnavailable)

	o.ApplyQuotes(testQuotes)
	_, err = o.Submit(context.Background())
	assert.NoError(t, err)
}

func TestOrchestrator_SubmitCancelled(t *testing.T) {
	h := history.NewService(history.NewMemStore(), log.NewNopLogger())
	o := New(Config{
		History:  h,
		Settler:  NewDeterministic(),
		Notifier: &recordingNotifier{},
		Delay:    time.Hour,
	})
	o.ApplyQuotes(testQuotes)
	fill(o)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Submit(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "idle", o.View().State)

	records, _ := h.Records(context.Background())
	assert.Empty(t, records)
}

func TestOrchestrator_Flip(t *testing.T) {
	f := newFixture(NewDeterministic())
	f.o.SetFromCurrency("ETH")
	f.o.SetToCurrency("ETH")
	_, _ = f.o.Submit(context.Background())
	require.NotEmpty(t, f.o.View().Errors)

	f.o.SetToCurrency("USDC")
	f.o.SetFromAmount("1")
	form := f.o.Flip()

	assert.Equal(t, swap.Form{FromCurrency: "USDC", ToCurrency: "ETH"}, form)
	assert.Empty(t, f.o.View().Errors)
	assert.Equal(t, "1 USDC = 0.000556 ETH", f.o.View().Rate)
}

func TestOrchestrator_Snapshot(t *testing.T) {
	f := newFixture(NewDeterministic())
	s := f.o.Snapshot()
	require.NotNil(t, s)

	price, ok := s.Lookup("ETH")
	assert.True(t, ok)
	assert.Equal(t, 1800.0, price)
	_, ok = s.Lookup("DEAD")
	assert.False(t, ok)
}
