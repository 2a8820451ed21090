package orchestrator

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go-token-swap"
)

// Settler decides the outcome of a submitted swap. The simulated settlers below
// stand in for a real trade execution service.
type Settler interface {
	Settle(ctx context.Context, form swap.Form) (swap.Status, error)
}

// SettlerFunc adapts a function to a Settler
type SettlerFunc func(ctx context.Context, form swap.Form) (swap.Status, error)

func (f SettlerFunc) Settle(ctx context.Context, form swap.Form) (swap.Status, error) {
	return f(ctx, form)
}

// Deterministic returns its outcomes in order, repeating from the start once
// exhausted. With no outcomes every swap succeeds.
type Deterministic struct {
	lock     sync.Mutex
	outcomes []swap.Status
	next     int
}

func NewDeterministic(outcomes ...swap.Status) *Deterministic {
	return &Deterministic{outcomes: outcomes}
}

func (d *Deterministic) Settle(_ context.Context, _ swap.Form) (swap.Status, error) {
	d.lock.Lock()
	defer d.lock.Unlock()
	if len(d.outcomes) == 0 {
		return swap.StatusSuccess, nil
	}
	status := d.outcomes[d.next%len(d.outcomes)]
	d.next++
	return status, nil
}

// Random succeeds with probability successProbability
type Random struct {
	lock               sync.Mutex
	rnd                *rand.Rand
	successProbability float64
}

// NewRandom seeds a Random settler. A zero seed uses the current time.
func NewRandom(seed int64, successProbability float64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{
		rnd:                rand.New(rand.NewSource(seed)),
		successProbability: successProbability,
	}
}

func (r *Random) Settle(_ context.Context, _ swap.Form) (swap.Status, error) {
	r.lock.Lock()
	draw := r.rnd.Float64()
	r.lock.Unlock()
	if draw > 1-r.successProbability {
		return swap.StatusSuccess, nil
	}
	return swap.StatusFailed, nil
}
