package corpus

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/tellsight/internal/domain/model"
)

// Default human pool configuration constants.
const (
	defaultPoolSize  = 10_000
	defaultSeed      = 42
	minPlayersPerHand = 2
)

// HumanFile serves hands reservoir-sampled from a top-level JSON array on
// disk. The file is scanned object by object so multi-gigabyte corpora never
// have to fit in memory. The read cursor is the only state that survives
// across cycles; when the pool is exhausted it is reshuffled and the cursor
// resets.
type HumanFile struct {
	mu     sync.Mutex
	pool   []model.Hand
	cursor int
	rng    *rand.Rand
}

// HumanOption applies a configuration option to the HumanFile source.
type HumanOption func(*humanConfig)

type humanConfig struct {
	poolSize int
	seed     int64
}

// WithPoolSize bounds the number of hands sampled into memory.
func WithPoolSize(n int) HumanOption {
	return func(c *humanConfig) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithHumanSeed fixes the sampling RNG for reproducible pools.
func WithHumanSeed(seed int64) HumanOption {
	return func(c *humanConfig) {
		c.seed = seed
	}
}

// NewHumanFile samples the corpus at path into an in-memory pool.
// A missing or unreadable file returns ErrMissingDataset: callers treat this
// as a fatal startup condition.
func NewHumanFile(path string, opts ...HumanOption) (*HumanFile, error) {
	cfg := &humanConfig{poolSize: defaultPoolSize, seed: defaultSeed}
	for _, opt := range opts {
		opt(cfg)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingDataset, path, err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	rng := rand.New(rand.NewSource(cfg.seed)) //nolint:gosec // sampling, not security
	pool, err := reservoirSample(f, cfg.poolSize, rng)
	if err != nil {
		return nil, fmt.Errorf("sampling %s: %w", path, err)
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no valid hands in %s", ErrMissingDataset, path)
	}

	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return &HumanFile{pool: pool, rng: rng}, nil
}

// NextHand returns the next pooled human hand, reshuffling when the cursor
// wraps.
func (h *HumanFile) NextHand(ctx context.Context, kind string) (model.Hand, error) {
	if kind != model.KindHuman {
		return model.Hand{}, wrapKind(ErrUnknownKind, kind)
	}
	if err := ctx.Err(); err != nil {
		return model.Hand{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cursor >= len(h.pool) {
		h.rng.Shuffle(len(h.pool), func(i, j int) { h.pool[i], h.pool[j] = h.pool[j], h.pool[i] })
		h.cursor = 0
	}
	hand := h.pool[h.cursor]
	h.cursor++
	return hand, nil
}

// Kinds returns the single human kind.
func (h *HumanFile) Kinds() []string {
	return []string{model.KindHuman}
}

// Size reports how many hands were sampled into the pool.
func (h *HumanFile) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.pool)
}

// rawHumanHand mirrors the corpus file schema for one hand.
type rawHumanHand struct {
	HandID     string            `json:"hand_id"`
	Players    []json.RawMessage `json:"players"`
	Actions    []rawAction       `json:"actions"`
	SmallBlind float64           `json:"small_blind"`
	BigBlind   float64           `json:"big_blind"`
	Format     string            `json:"format"`
}

type rawAction struct {
	Action  string  `json:"action"`
	Amount  float64 `json:"amount"`
	Street  string  `json:"street"`
	Stack   float64 `json:"stack"`
	Pot     float64 `json:"pot"`
	Elapsed float64 `json:"elapsed"`
}

// valid applies the same admission rules as the corpus pipeline: at least
// two players and at least one action.
func (r rawHumanHand) valid() bool {
	return len(r.Players) >= minPlayersPerHand && len(r.Actions) > 0
}

func (r rawHumanHand) toHand() model.Hand {
	id := r.HandID
	if id == "" {
		id = uuid.New().String()
	}
	events := make([]model.HandEvent, len(r.Actions))
	timings := make([]float64, len(r.Actions))
	for i, a := range r.Actions {
		events[i] = model.HandEvent{
			Action: a.Action,
			Amount: a.Amount,
			Street: a.Street,
			Stack:  a.Stack,
			Pot:    a.Pot,
		}
		timings[i] = a.Elapsed
	}
	return model.Hand{
		ID:      id,
		Events:  events,
		Timings: timings,
		Context: model.HandContext{
			SmallBlind: r.SmallBlind,
			BigBlind:   r.BigBlind,
			Seats:      len(r.Players),
			Format:     r.Format,
		},
		Label: model.LabelHuman,
	}
}

// reservoirSample scans a top-level JSON array and keeps a uniform sample of
// the valid hands it contains. Malformed entries are skipped, not fatal.
func reservoirSample(r io.Reader, sampleSize int, rng *rand.Rand) ([]model.Hand, error) {
	reservoir := make([]model.Hand, 0, sampleSize)
	seen := 0

	err := scanArrayObjects(r, func(raw []byte) error {
		var rh rawHumanHand
		if err := json.Unmarshal(raw, &rh); err != nil {
			return nil // skip junk entries
		}
		if !rh.valid() {
			return nil
		}

		hand := rh.toHand()
		if len(reservoir) < sampleSize {
			reservoir = append(reservoir, hand)
		} else if j := rng.Intn(seen + 1); j < sampleSize {
			reservoir[j] = hand
		}
		seen++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return reservoir, nil
}

// scanArrayObjects streams the raw bytes of each top-level object in a JSON
// array to fn without materializing the array. Brace depth is tracked
// manually so string contents (including escaped quotes) never confuse the
// scanner.
func scanArrayObjects(r io.Reader, fn func(raw []byte) error) error {
	br := bufio.NewReader(r)

	var (
		inString   bool
		escaped    bool
		depth      int
		collecting bool
		arrayOpen  bool
		buf        []byte
	)

	for {
		ch, err := br.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("scan corpus: %w", err)
		}

		if collecting {
			buf = append(buf, ch)
		}

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
			if depth == 1 {
				arrayOpen = true
			}
		case ']':
			depth--
		case '{':
			if arrayOpen && depth == 1 && !collecting {
				collecting = true
				buf = append(buf[:0], '{')
			}
			depth++
		case '}':
			depth--
			if collecting && depth == 1 {
				collecting = false
				if err := fn(buf); err != nil {
					return err
				}
			}
		}
	}
}
