// Package chunk assembles labeled hands into batches and dispatch chunks.
package chunk

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/okian/tellsight/internal/domain/corpus"
	"github.com/okian/tellsight/internal/domain/model"
)

// SchemaVersion is stamped on every chunk built by this package. Scoring
// aligns responses positionally, so all chunks of a cycle carry the same
// version.
const SchemaVersion = 1

// Default builder configuration constants.
const (
	defaultBatchSize  = 10
	defaultChunkWidth = 4
	defaultChunkCount = 8
	defaultHumanRatio = 0.5
	defaultSeed       = 42
)

// Builder pulls hands from a corpus source and emits chunks whose batches
// are each homogeneous in generation kind. No chunk is label-homogeneous:
// every chunk mixes at least one human batch with at least one bot batch.
type Builder struct {
	source     corpus.Source
	batchSize  int
	chunkWidth int
	chunkCount int
	humanRatio float64
	rng        *rand.Rand
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithBatchSize sets the number of hands per batch.
func WithBatchSize(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.batchSize = n
		}
	}
}

// WithChunkWidth sets the number of batches per chunk. Widths below two are
// rejected because a single-batch chunk would be label-homogeneous.
func WithChunkWidth(n int) Option {
	return func(b *Builder) {
		if n >= 2 {
			b.chunkWidth = n
		}
	}
}

// WithChunkCount sets how many chunks one cycle targets.
func WithChunkCount(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.chunkCount = n
		}
	}
}

// WithHumanRatio sets the target fraction of human batches per chunk. The
// plan still clamps so every chunk keeps at least one batch of each label.
func WithHumanRatio(ratio float64) Option {
	return func(b *Builder) {
		if ratio > 0 && ratio < 1 {
			b.humanRatio = ratio
		}
	}
}

// WithSeed fixes the batch-order shuffle RNG.
func WithSeed(seed int64) Option {
	return func(b *Builder) {
		b.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // shuffle, not security
	}
}

// New creates a Builder over the given source.
func New(source corpus.Source, opts ...Option) *Builder {
	b := &Builder{
		source:     source,
		batchSize:  defaultBatchSize,
		chunkWidth: defaultChunkWidth,
		chunkCount: defaultChunkCount,
		humanRatio: defaultHumanRatio,
		rng:        rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // shuffle, not security
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build assembles up to the configured number of chunks. When the source
// runs dry mid-cycle the chunks built so far are returned together with a
// wrapped corpus.ErrInsufficientData; the caller decides whether a degraded
// cycle is still worth running.
func (b *Builder) Build(ctx context.Context) ([]model.Chunk, error) {
	families := corpus.BotKinds(b.source)
	if len(families) == 0 {
		return nil, fmt.Errorf("build chunks: %w", corpus.ErrInsufficientData)
	}

	chunks := make([]model.Chunk, 0, b.chunkCount)
	familyCursor := 0

	for i := 0; i < b.chunkCount; i++ {
		plan := b.planKinds(families, &familyCursor)

		batches := make([]model.Batch, 0, len(plan))
		for _, kind := range plan {
			batch, err := b.fillBatch(ctx, kind)
			if err != nil {
				return chunks, fmt.Errorf("chunk %d, batch kind %q: %w", i, kind, err)
			}
			batches = append(batches, batch)
		}

		// Randomize batch order so workers cannot learn label positions.
		b.rng.Shuffle(len(batches), func(x, y int) {
			batches[x], batches[y] = batches[y], batches[x]
		})

		chunks = append(chunks, model.Chunk{
			Index:         i,
			SchemaVersion: SchemaVersion,
			Batches:       batches,
		})
	}
	return chunks, nil
}

// planKinds lays out the batch kinds for one chunk: the configured human
// share (at least one batch, at most width-1), the rest rotating across bot
// families.
func (b *Builder) planKinds(families []string, cursor *int) []string {
	humans := int(b.humanRatio*float64(b.chunkWidth) + 0.5)
	if humans < 1 {
		humans = 1
	}
	if humans > b.chunkWidth-1 {
		humans = b.chunkWidth - 1
	}

	plan := make([]string, 0, b.chunkWidth)
	for i := 0; i < humans; i++ {
		plan = append(plan, model.KindHuman)
	}
	for i := humans; i < b.chunkWidth; i++ {
		plan = append(plan, families[*cursor%len(families)])
		*cursor++
	}
	return plan
}

// fillBatch pulls a full batch of a single kind from the source.
func (b *Builder) fillBatch(ctx context.Context, kind string) (model.Batch, error) {
	label := model.LabelBot
	if kind == model.KindHuman {
		label = model.LabelHuman
	}

	hands := make([]model.Hand, 0, b.batchSize)
	for len(hands) < b.batchSize {
		hand, err := b.source.NextHand(ctx, kind)
		if err != nil {
			if errors.Is(err, corpus.ErrInsufficientData) {
				return model.Batch{}, err
			}
			return model.Batch{}, fmt.Errorf("%w: %v", corpus.ErrInsufficientData, err)
		}
		hands = append(hands, hand)
	}
	return model.Batch{Kind: kind, Label: label, Hands: hands}, nil
}
