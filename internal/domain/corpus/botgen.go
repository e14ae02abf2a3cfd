package corpus

import (
	"context"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/tellsight/internal/domain/model"
)

// Bot generation constants.
const (
	minEventsPerHand = 4
	maxEventsPerHand = 12
	defaultBotSeed   = 1337
	startingStack    = 200.0
	baseBigBlind     = 2.0
)

var streets = []string{"preflop", "flop", "turn", "river"}

// Profile describes one bot family's behavioral signature. The timing
// parameters are the machine tell: real players have heavy-tailed decision
// times, generators tend toward tight distributions.
type Profile struct {
	Name string
	// Aggression is the probability of a bet/raise over a passive action.
	Aggression float64
	// TimingMean and TimingJitter shape per-decision think time in seconds.
	TimingMean   float64
	TimingJitter float64
	// SizingSteps are the pot fractions the family bets in.
	SizingSteps []float64
}

// DefaultProfiles returns the built-in bot families.
func DefaultProfiles() []Profile {
	return []Profile{
		{
			Name:         "pressure",
			Aggression:   0.8,
			TimingMean:   1.2,
			TimingJitter: 0.3,
			SizingSteps:  []float64{0.66, 0.75, 1.0},
		},
		{
			Name:         "station",
			Aggression:   0.15,
			TimingMean:   2.5,
			TimingJitter: 0.8,
			SizingSteps:  []float64{0.5},
		},
		{
			Name:         "metronome",
			Aggression:   0.5,
			TimingMean:   1.0,
			TimingJitter: 0.02, // near-constant think time
			SizingSteps:  []float64{0.5, 0.75},
		},
	}
}

// Generator synthesizes bot hands from family profiles.
type Generator struct {
	mu       sync.Mutex
	profiles map[string]Profile
	order    []string
	rng      *rand.Rand
}

// GeneratorOption applies a configuration option to the Generator.
type GeneratorOption func(*Generator)

// WithProfiles replaces the default bot families.
func WithProfiles(profiles []Profile) GeneratorOption {
	return func(g *Generator) {
		if len(profiles) == 0 {
			return
		}
		g.profiles = make(map[string]Profile, len(profiles))
		g.order = g.order[:0]
		for _, p := range profiles {
			g.profiles[p.Name] = p
			g.order = append(g.order, p.Name)
		}
	}
}

// WithBotSeed fixes the generator RNG for reproducible hands.
func WithBotSeed(seed int64) GeneratorOption {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // synthetic data, not security
	}
}

// NewGenerator creates a bot hand generator with the default families.
func NewGenerator(opts ...GeneratorOption) *Generator {
	g := &Generator{
		profiles: make(map[string]Profile),
		rng:      rand.New(rand.NewSource(defaultBotSeed)), //nolint:gosec // synthetic data
	}
	WithProfiles(DefaultProfiles())(g)
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NextHand synthesizes one hand for the named family.
func (g *Generator) NextHand(ctx context.Context, kind string) (model.Hand, error) {
	if err := ctx.Err(); err != nil {
		return model.Hand{}, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	profile, ok := g.profiles[kind]
	if !ok {
		return model.Hand{}, wrapKind(ErrUnknownKind, kind)
	}
	return g.synthesize(profile), nil
}

// Kinds lists the configured family names in registration order.
func (g *Generator) Kinds() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

func (g *Generator) synthesize(p Profile) model.Hand {
	n := minEventsPerHand + g.rng.Intn(maxEventsPerHand-minEventsPerHand+1)
	events := make([]model.HandEvent, n)
	timings := make([]float64, n)

	stack := startingStack
	pot := baseBigBlind * 1.5
	for i := 0; i < n; i++ {
		street := streets[min(i*len(streets)/n, len(streets)-1)]
		ev := model.HandEvent{Street: street, Stack: stack, Pot: pot}

		if g.rng.Float64() < p.Aggression {
			frac := p.SizingSteps[g.rng.Intn(len(p.SizingSteps))]
			ev.Action = "bet"
			ev.Amount = frac * pot
		} else if g.rng.Float64() < 0.5 {
			ev.Action = "check"
		} else {
			ev.Action = "call"
			ev.Amount = baseBigBlind
		}

		pot += ev.Amount
		stack -= ev.Amount
		events[i] = ev

		// Normal-ish think time around the family mean.
		t := p.TimingMean + g.rng.NormFloat64()*p.TimingJitter
		if t < 0.05 {
			t = 0.05
		}
		timings[i] = t
	}

	return model.Hand{
		ID:      uuid.New().String(),
		Events:  events,
		Timings: timings,
		Context: model.HandContext{
			SmallBlind: baseBigBlind / 2,
			BigBlind:   baseBigBlind,
			Seats:      2 + g.rng.Intn(7),
			Format:     "cash",
		},
		Label:      model.LabelBot,
		Provenance: p.Name,
	}
}
