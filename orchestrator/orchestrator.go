package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-kit/log"
	"go-token-swap"
	"go-token-swap/catalog"
	"go-token-swap/exchange"
	"go-token-swap/history"
)

var (
	// ErrSubmitInProgress returned by Submit while another submission is running
	ErrSubmitInProgress = errors.New("swap already in progress")
	// ErrTokensUnavailable returned by Submit while no usable price list is loaded
	ErrTokensUnavailable = errors.New("tokens unavailable")
)

// State of the swap form
type State int

const (
	Idle State = iota
	Validating
	Submitting
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Validating:
		return "validating"
	case Submitting:
		return "submitting"
	case Completed:
		return "completed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Notifier receives swap outcomes. Notify must not block for long.
type Notifier interface {
	Notify(ctx context.Context, n swap.Notification)
}

// Metrics records orchestrator activity
type Metrics interface {
	SwapCompleted(status swap.Status, took time.Duration)
	SwapRejected(reason string)
}

// Config dependencies of an Orchestrator. Notifier, Metrics and Logger may be nil.
type Config struct {
	History  history.Service
	Settler  Settler
	Notifier Notifier
	Metrics  Metrics
	// Delay simulated network latency before settlement
	Delay  time.Duration
	Logger log.Logger
}

// View read-only snapshot of the form for clients
type View struct {
	Form     swap.Form         `json:"form"`
	Errors   map[string]string `json:"errors"`
	Rate     string            `json:"rate"`
	State    string            `json:"state"`
	Action   string            `json:"action"`
	Disabled bool              `json:"disabled"`
}

// Result of a finished submission
type Result struct {
	Record       swap.Record
	Notification swap.Notification
}

// Orchestrator owns the swap form. Every edit recomputes the derived amount
// against the current catalog snapshot, and so does every catalog change.
type Orchestrator struct {
	history  history.Service
	settler  Settler
	notifier Notifier
	metrics  Metrics
	delay    time.Duration
	logger   log.Logger

	// lock guards all fields below
	lock    sync.Mutex
	form    swap.Form
	errors  map[string]string
	prices  *catalog.Snapshot
	feedErr error
	state   State
}

func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		history:  cfg.History,
		settler:  cfg.Settler,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		delay:    cfg.Delay,
		logger:   cfg.Logger,
		errors:   map[string]string{},
	}
	if o.notifier == nil {
		o.notifier = nopNotifier{}
	}
	if o.metrics == nil {
		o.metrics = nopMetrics{}
	}
	if o.logger == nil {
		o.logger = log.NewNopLogger()
	}
	return o
}

// SetFromCurrency selects the currency paid
func (o *Orchestrator) SetFromCurrency(c swap.Currency) swap.Form {
	return o.edit(FieldFromCurrency, func(f *swap.Form) { f.FromCurrency = c })
}

// SetToCurrency selects the currency received
func (o *Orchestrator) SetToCurrency(c swap.Currency) swap.Form {
	return o.edit(FieldToCurrency, func(f *swap.Form) { f.ToCurrency = c })
}

// SetFromAmount sets the amount paid
func (o *Orchestrator) SetFromAmount(amount string) swap.Form {
	return o.edit(FieldFromAmount, func(f *swap.Form) { f.FromAmount = amount })
}

func (o *Orchestrator) edit(field string, apply func(f *swap.Form)) swap.Form {
	o.lock.Lock()
	defer o.lock.Unlock()
	apply(&o.form)
	delete(o.errors, field)
	o.recomputeLocked()
	return o.form
}

// Flip swaps the from and to currencies, clearing amounts and errors
func (o *Orchestrator) Flip() swap.Form {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.form = exchange.Flip(o.form)
	o.errors = map[string]string{}
	o.recomputeLocked()
	return o.form
}

// ApplyQuotes replaces the catalog with one built from a freshly fetched quote
// list. Quotes without a positive price are not tradable and are left out.
func (o *Orchestrator) ApplyQuotes(quotes []swap.Quote) {
	snapshot := catalog.New(catalog.Positive(catalog.Build(quotes)))

	o.lock.Lock()
	defer o.lock.Unlock()
	o.prices = snapshot
	o.feedErr = nil
	o.recomputeLocked()
}

// FeedFailed marks the tokens unavailable until the next successful fetch
func (o *Orchestrator) FeedFailed(err error) {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.feedErr = err
}

// OnFeed adapts the orchestrator to a price feed subscriber
func (o *Orchestrator) OnFeed(quotes []swap.Quote, err error) {
	if err != nil {
		o.FeedFailed(err)
		return
	}
	o.ApplyQuotes(quotes)
}

// Snapshot the current catalog, nil before the first successful fetch
func (o *Orchestrator) Snapshot() *catalog.Snapshot {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.prices
}

// Form the current form fields
func (o *Orchestrator) Form() swap.Form {
	o.lock.Lock()
	defer o.lock.Unlock()
	return o.form
}

// View the form with its errors, rate and submit button state
func (o *Orchestrator) View() View {
	o.lock.Lock()
	defer o.lock.Unlock()

	errs := make(map[string]string, len(o.errors))
	for k, v := range o.errors {
		errs[k] = v
	}

	loading := o.prices == nil && o.feedErr == nil
	action := "Swap Tokens"
	switch {
	case o.state != Idle:
		action = "Processing..."
	case o.feedErr != nil:
		action = "Failed to load tokens"
	case loading:
		action = "Loading tokens..."
	}

	return View{
		Form:     o.form,
		Errors:   errs,
		Rate:     exchange.RateDisplay(o.form.FromCurrency, o.form.ToCurrency, o.prices),
		State:    o.state.String(),
		Action:   action,
		Disabled: o.state != Idle || o.feedErr != nil || loading,
	}
}

// Submit validates the form and settles the swap. Field values are captured
// before the delay so later edits do not affect the recorded swap. While a
// submission is running further calls return ErrSubmitInProgress.
func (o *Orchestrator) Submit(ctx context.Context) (Result, error) {
	begin := time.Now()

	o.lock.Lock()
	if o.state != Idle {
		o.lock.Unlock()
		o.metrics.SwapRejected("in_progress")
		return Result{}, ErrSubmitInProgress
	}
	if o.prices == nil || o.feedErr != nil {
		o.lock.Unlock()
		o.metrics.SwapRejected("tokens_unavailable")
		return Result{}, ErrTokensUnavailable
	}

	o.state = Validating
	if verr := Validate(o.form); verr != nil {
		o.errors = make(map[string]string, len(verr.Fields))
		for k, v := range verr.Fields {
			o.errors[k] = v
		}
		o.state = Idle
		o.lock.Unlock()
		o.metrics.SwapRejected("validation")
		return Result{}, verr
	}
	o.errors = map[string]string{}
	form := o.form
	rate := ""
	if _, ok := exchange.Rate(form.FromCurrency, form.ToCurrency, o.prices); ok {
		rate = exchange.RateDisplay(form.FromCurrency, form.ToCurrency, o.prices)
	}
	o.state = Submitting
	o.lock.Unlock()

	defer o.setState(Idle)

	select {
	case <-time.After(o.delay):
	case <-ctx.Done():
		return Result{}, fmt.Errorf("submit swap: %w", ctx.Err())
	}

	status, err := o.settler.Settle(ctx, form)
	if err != nil {
		o.logger.Log("msg", "settlement failed", "from", form.FromCurrency, "to", form.ToCurrency, "err", err)
		status = swap.StatusFailed
	}
	o.setState(Completed)

	input := swap.RecordInput{
		FromCurrency: form.FromCurrency,
		ToCurrency:   form.ToCurrency,
		FromAmount:   form.FromAmount,
		ToAmount:     form.ToAmount,
		Status:       status,
	}
	notification := swap.Notification{
		Status:      swap.StatusFailed,
		Title:       "Swap Failed",
		Description: "Insufficient liquidity or network error",
	}
	if status == swap.StatusSuccess {
		input.Rate = rate
		notification = swap.Notification{
			Status: swap.StatusSuccess,
			Title:  "Swap Successful!",
			Description: fmt.Sprintf("Successfully swapped %s %s for %s %s",
				form.FromAmount, form.FromCurrency, form.ToAmount, form.ToCurrency),
		}
	}

	record, historyErr := o.history.Append(ctx, input)
	if historyErr != nil {
		o.logger.Log("msg", "recording swap failed", "status", status, "err", historyErr)
	}
	notification.Record = record
	o.notifier.Notify(ctx, notification)

	if status == swap.StatusSuccess {
		o.lock.Lock()
		o.form.FromAmount = ""
		o.form.ToAmount = ""
		o.lock.Unlock()
	}

	o.metrics.SwapCompleted(status, time.Since(begin))

	result := Result{Record: record, Notification: notification}
	if historyErr != nil {
		return result, fmt.Errorf("record swap: %w", historyErr)
	}
	return result, nil
}

func (o *Orchestrator) setState(s State) {
	o.lock.Lock()
	defer o.lock.Unlock()
	o.state = s
}

func (o *Orchestrator) recomputeLocked() {
	o.form = exchange.Recompute(o.form, o.prices)
}

type nopMetrics struct{}

func (nopMetrics) SwapCompleted(swap.Status, time.Duration) {}
func (nopMetrics) SwapRejected(string)                      {}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, swap.Notification) {}
