// Package allocation maps a cycle's score records to a reward vector.
package allocation

import "github.com/okian/tellsight/internal/domain/model"

// Default burn split. The reserved identity always receives the burn share;
// the single top-scoring eligible worker receives the remainder.
const (
	defaultBurnFraction = 0.97
)

// Allocator implements the winner-take-all policy. The allocation function
// is intentionally a step function on rank, written as explicit branches
// rather than a continuous formula, so proportional rewards cannot creep
// back in.
type Allocator struct {
	burnFraction float64
	reservedUID  int
}

// Option applies a configuration option to the Allocator.
type Option func(*Allocator)

// WithBurnFraction overrides the reserved identity's share.
func WithBurnFraction(f float64) Option {
	return func(a *Allocator) {
		if f > 0 && f < 1 {
			a.burnFraction = f
		}
	}
}

// WithReservedUID overrides the protocol sink identity.
func WithReservedUID(uid int) Option {
	return func(a *Allocator) {
		if uid >= 0 {
			a.reservedUID = uid
		}
	}
}

// New creates an Allocator with the default 97/3 split to model.ReservedUID.
func New(opts ...Option) *Allocator {
	a := &Allocator{
		burnFraction: defaultBurnFraction,
		reservedUID:  model.ReservedUID,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate is a pure function of the records: no hidden state, no
// cross-cycle smoothing. The result always sums to exactly 1.
//
// Branch one: at least one worker has a positive composite. The reserved
// identity receives the burn fraction and the top worker the rest; ties on
// composite resolve to the lowest UID.
//
// Branch two: nobody is eligible. The reserved identity receives 100%.
func (a *Allocator) Allocate(records []model.ScoreRecord) model.WeightVector {
	winner, found := a.pickWinner(records)
	if !found {
		return model.WeightVector{a.reservedUID: 1.0}
	}
	return model.WeightVector{
		a.reservedUID: a.burnFraction,
		winner:        1.0 - a.burnFraction,
	}
}

// pickWinner selects the eligible worker with the strictly highest
// composite score, lowest UID on ties. Workers with score zero (including
// every zero-evidence worker) are ineligible, as is the reserved identity.
func (a *Allocator) pickWinner(records []model.ScoreRecord) (int, bool) {
	var (
		winner int
		best   float64
		found  bool
	)
	for _, rec := range records {
		if rec.UID == a.reservedUID || rec.Composite <= 0 {
			continue
		}
		switch {
		case !found, rec.Composite > best:
			winner, best, found = rec.UID, rec.Composite, true
		case rec.Composite == best && rec.UID < winner:
			winner = rec.UID
		}
	}
	return winner, found
}
