// Package corpus supplies labeled poker hands on demand. The human side is
// backed by a private JSON corpus on disk; the bot side is generated from a
// set of family profiles.
package corpus

import (
	"context"
	"fmt"

	"github.com/okian/tellsight/internal/domain/model"
)

// Source supplies one labeled hand at a time for the requested generation
// kind. A kind is either model.KindHuman or the name of a bot family.
type Source interface {
	// NextHand returns the next hand of the given kind.
	// Returns ErrInsufficientData when the kind cannot be supplied.
	NextHand(ctx context.Context, kind string) (model.Hand, error)

	// Kinds lists every generation kind this source can supply.
	Kinds() []string
}

// Mixed routes human requests to a file-backed pool and bot requests to a
// family generator.
type Mixed struct {
	humans Source
	bots   Source
}

// NewMixed combines a human source and a bot source into one Source.
func NewMixed(humans, bots Source) *Mixed {
	return &Mixed{humans: humans, bots: bots}
}

// NextHand routes the request by kind.
func (m *Mixed) NextHand(ctx context.Context, kind string) (model.Hand, error) {
	if kind == model.KindHuman {
		return m.humans.NextHand(ctx, kind)
	}
	return m.bots.NextHand(ctx, kind)
}

// Kinds returns the human kind followed by every bot family.
func (m *Mixed) Kinds() []string {
	kinds := make([]string, 0, 1+len(m.bots.Kinds()))
	kinds = append(kinds, m.humans.Kinds()...)
	kinds = append(kinds, m.bots.Kinds()...)
	return kinds
}

// BotKinds returns only the bot families of a source, preserving order.
func BotKinds(s Source) []string {
	var out []string
	for _, k := range s.Kinds() {
		if k != model.KindHuman {
			out = append(out, k)
		}
	}
	return out
}

// wrapKind annotates an error with the kind that could not be supplied.
func wrapKind(err error, kind string) error {
	return fmt.Errorf("kind %q: %w", kind, err)
}
