// Package model contains domain models passed between layers.
package model

// Label is the ground-truth origin of a hand.
type Label int

const (
	// LabelHuman marks a hand drawn from the human corpus.
	LabelHuman Label = iota
	// LabelBot marks a synthetically generated hand.
	LabelBot
)

// String returns the canonical wire name of the label.
func (l Label) String() string {
	if l == LabelBot {
		return "bot"
	}
	return "human"
}

// KindHuman is the generation kind shared by all human hands. Bot hands use
// their family name as the kind.
const KindHuman = "human"

// HandEvent is a single decision inside a hand's action log.
type HandEvent struct {
	Action string  `json:"action"` // fold, check, call, bet, raise
	Amount float64 `json:"amount"`
	Street string  `json:"street"` // preflop, flop, turn, river
	Stack  float64 `json:"stack"`
	Pot    float64 `json:"pot"`
}

// HandContext carries table metadata needed by classifiers.
type HandContext struct {
	SmallBlind float64 `json:"small_blind"`
	BigBlind   float64 `json:"big_blind"`
	Seats      int     `json:"seats"`
	Format     string  `json:"format"` // cash, tournament
}

// Hand is one labeled poker decision sequence. Immutable once produced by a
// corpus source.
type Hand struct {
	ID      string
	Events  []HandEvent
	Timings []float64 // seconds taken per decision, aligned with Events
	Context HandContext
	Label   Label
	// Provenance names the generating bot family; empty for human hands.
	Provenance string
}

// Batch is an ordered group of hands homogeneous in generation kind.
type Batch struct {
	Kind  string
	Label Label
	Hands []Hand
}

// Chunk is the dispatch unit: an ordered sequence of batches sent to every
// worker in one cycle.
type Chunk struct {
	Index         int
	SchemaVersion int
	Batches       []Batch
}

// HandCount returns the total number of hands across all batches.
func (c Chunk) HandCount() int {
	n := 0
	for _, b := range c.Batches {
		n += len(b.Hands)
	}
	return n
}

// Labels returns the ground-truth label of every hand in chunk order. The
// slice aligns positionally with the predictions a worker returns.
func (c Chunk) Labels() []Label {
	out := make([]Label, 0, c.HandCount())
	for _, b := range c.Batches {
		for range b.Hands {
			out = append(out, b.Label)
		}
	}
	return out
}
