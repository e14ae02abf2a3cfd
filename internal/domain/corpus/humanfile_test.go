package corpus

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/tellsight/internal/domain/model"
)

const sampleCorpus = `[
  {"hand_id":"h1","players":[{"seat":1},{"seat":2}],"actions":[{"action":"call","amount":2,"street":"preflop","elapsed":1.4}],"small_blind":1,"big_blind":2,"format":"cash"},
  {"hand_id":"h2","players":[{"seat":1}],"actions":[{"action":"fold"}]},
  {"hand_id":"h3","players":[{"seat":1},{"seat":2},{"seat":3}],"actions":[]},
  {"hand_id":"h4","players":[{"seat":1},{"seat":2}],"actions":[{"action":"bet","amount":5,"street":"flop","elapsed":3.1},{"action":"call","amount":5,"street":"flop","elapsed":0.9}]}
]`

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hands.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	return path
}

func TestScanArrayObjects(t *testing.T) {
	var got []string
	err := scanArrayObjects(strings.NewReader(sampleCorpus), func(raw []byte) error {
		got = append(got, string(raw))
		return nil
	})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 objects, got %d", len(got))
	}
	if !strings.Contains(got[0], `"hand_id":"h1"`) {
		t.Errorf("first object mismatch: %s", got[0])
	}
}

func TestScanArrayObjects_EscapedQuotesAndBracesInStrings(t *testing.T) {
	payload := `[{"hand_id":"a\"}{","players":[1,2],"actions":[{"action":"bet {pot}"}]}]`
	count := 0
	err := scanArrayObjects(strings.NewReader(payload), func(raw []byte) error {
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 object, got %d", count)
	}
}

func TestReservoirSample_FiltersInvalidHands(t *testing.T) {
	rng := rand.New(rand.NewSource(1)) //nolint:gosec // test determinism
	pool, err := reservoirSample(strings.NewReader(sampleCorpus), 10, rng)
	if err != nil {
		t.Fatalf("sample failed: %v", err)
	}
	// h2 has a single player, h3 has no actions; only h1 and h4 qualify.
	if len(pool) != 2 {
		t.Fatalf("expected 2 valid hands, got %d", len(pool))
	}
	for _, h := range pool {
		if h.Label != model.LabelHuman {
			t.Errorf("hand %s not labeled human", h.ID)
		}
		if len(h.Events) == 0 {
			t.Errorf("hand %s has no events", h.ID)
		}
	}
}

func TestNewHumanFile_MissingPath(t *testing.T) {
	_, err := NewHumanFile(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing dataset")
	}
}

func TestHumanFile_CursorWraps(t *testing.T) {
	src, err := NewHumanFile(writeCorpus(t, sampleCorpus), WithHumanSeed(7))
	if err != nil {
		t.Fatalf("new human file: %v", err)
	}
	if src.Size() != 2 {
		t.Fatalf("expected pool of 2, got %d", src.Size())
	}

	seen := map[string]int{}
	for i := 0; i < 6; i++ {
		h, err := src.NextHand(context.Background(), model.KindHuman)
		if err != nil {
			t.Fatalf("next hand %d: %v", i, err)
		}
		seen[h.ID]++
	}
	// Cursor wraps: both hands are served three times over six draws.
	if seen["h1"] != 3 || seen["h4"] != 3 {
		t.Errorf("uneven service across wraps: %v", seen)
	}
}

func TestHumanFile_RejectsBotKind(t *testing.T) {
	src, err := NewHumanFile(writeCorpus(t, sampleCorpus))
	if err != nil {
		t.Fatalf("new human file: %v", err)
	}
	if _, err := src.NextHand(context.Background(), "pressure"); err == nil {
		t.Fatal("expected error for bot kind")
	}
}
