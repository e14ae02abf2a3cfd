// Package service runs the evaluation loop and implements the
// dependencies required by the admin HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/tellsight/internal/adapters/dispatch"
	"github.com/okian/tellsight/internal/adapters/registry"
	"github.com/okian/tellsight/internal/adapters/report"
	"github.com/okian/tellsight/internal/domain/allocation"
	"github.com/okian/tellsight/internal/domain/chunk"
	"github.com/okian/tellsight/internal/domain/corpus"
	"github.com/okian/tellsight/internal/domain/model"
	"github.com/okian/tellsight/internal/domain/scoring"
	"github.com/okian/tellsight/pkg/logger"
	"github.com/okian/tellsight/pkg/metrics"
)

// Service owns one evaluation pipeline: corpus -> chunks -> dispatch ->
// scores -> weights. Cycle outcomes are published to a report holder for
// the read side.
type Service struct {
	mu sync.RWMutex

	// Core components, built on Start.
	source     corpus.Source
	builder    *chunk.Builder
	roster     *registry.Registry
	dispatcher *dispatch.Dispatcher
	engine     *scoring.Engine
	allocator  *allocation.Allocator
	reports    *report.Holder

	// Configuration
	datasetPath    string
	poolSize       int
	batchSize      int
	chunkWidth     int
	chunksPerCycle int
	humanRatio     float64
	seed           int64
	pollInterval   time.Duration
	requestTimeout time.Duration
	cycleTimeout   time.Duration
	workers        []model.Worker
	rosterPath     string
	burnFraction   float64

	// State
	started   bool
	stopCh    chan struct{}
	sequence  int
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDatasetPath sets the human hand corpus location.
func WithDatasetPath(path string) Option {
	return func(s *Service) {
		s.datasetPath = path
	}
}

// WithPoolSize caps the in-memory human hand pool.
func WithPoolSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.poolSize = n
		}
	}
}

// WithCycleShape sets hands per batch, batches per chunk, and chunks per
// cycle.
func WithCycleShape(batchSize, chunkWidth, chunksPerCycle int) Option {
	return func(s *Service) {
		if batchSize > 0 {
			s.batchSize = batchSize
		}
		if chunkWidth > 1 {
			s.chunkWidth = chunkWidth
		}
		if chunksPerCycle > 0 {
			s.chunksPerCycle = chunksPerCycle
		}
	}
}

// WithHumanRatio sets the target fraction of human batches per chunk.
func WithHumanRatio(ratio float64) Option {
	return func(s *Service) {
		if ratio > 0 && ratio < 1 {
			s.humanRatio = ratio
		}
	}
}

// WithSeed pins sampling and batch ordering for reproducible runs. Zero
// derives the seed from the clock.
func WithSeed(seed int64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithPollInterval sets the pause between cycles.
func WithPollInterval(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pollInterval = d
		}
	}
}

// WithTimeouts sets the per-request and per-cycle dispatch bounds.
func WithTimeouts(request, cycle time.Duration) Option {
	return func(s *Service) {
		if request > 0 {
			s.requestTimeout = request
		}
		if cycle > 0 {
			s.cycleTimeout = cycle
		}
	}
}

// WithWorkers seeds the roster from configuration.
func WithWorkers(workers []model.Worker) Option {
	return func(s *Service) {
		s.workers = workers
	}
}

// WithRosterFile merges workers from a JSON roster file at startup.
func WithRosterFile(path string) Option {
	return func(s *Service) {
		s.rosterPath = path
	}
}

// WithBurnFraction overrides the share reserved for the sink UID.
func WithBurnFraction(f float64) Option {
	return func(s *Service) {
		if f >= 0 && f <= 1 {
			s.burnFraction = f
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		poolSize:       10_000,
		batchSize:      10,
		chunkWidth:     4,
		chunksPerCycle: 8,
		humanRatio:     0.5,
		pollInterval:   5 * time.Minute,
		requestTimeout: 20 * time.Second,
		cycleTimeout:   2 * time.Minute,
		burnFraction:   0.97,
		stopCh:         make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds the pipeline components. It fails when the human dataset is
// missing; running without real human hands would score every worker
// against a fiction.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting validator service...")

	seed := s.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	humans, err := corpus.NewHumanFile(s.datasetPath,
		corpus.WithPoolSize(s.poolSize),
		corpus.WithHumanSeed(seed),
	)
	if err != nil {
		return fmt.Errorf("human corpus: %w", err)
	}
	bots := corpus.NewGenerator(corpus.WithBotSeed(seed + 1))
	s.source = corpus.NewMixed(humans, bots)

	s.builder = chunk.New(s.source,
		chunk.WithBatchSize(s.batchSize),
		chunk.WithChunkWidth(s.chunkWidth),
		chunk.WithChunkCount(s.chunksPerCycle),
		chunk.WithHumanRatio(s.humanRatio),
		chunk.WithSeed(seed),
	)

	rosterOpts := []registry.Option{registry.WithWorkers(s.workers)}
	if s.rosterPath != "" {
		rosterOpts = append(rosterOpts, registry.WithRosterFile(s.rosterPath))
	}
	s.roster, err = registry.New(rosterOpts...)
	if err != nil {
		return fmt.Errorf("roster: %w", err)
	}

	s.dispatcher = dispatch.New(
		dispatch.WithTimeout(s.requestTimeout),
		dispatch.WithLogger(s.logger.Named("dispatch")),
	)
	s.engine = scoring.New()
	s.allocator = allocation.New(allocation.WithBurnFraction(s.burnFraction))
	s.reports = report.NewHolder()

	s.started = true
	s.startedAt = time.Now()
	metrics.UpdateRosterSize(s.roster.Count())

	s.logger.Info(ctx, "validator service started",
		logger.Int("pool", humans.Size()),
		logger.Int("workers", s.roster.Count()),
		logger.Int("chunksPerCycle", s.chunksPerCycle),
		logger.Int("chunkWidth", s.chunkWidth),
		logger.Int("batchSize", s.batchSize),
	)

	return nil
}

// Run executes evaluation cycles until the context is canceled or Stop is
// called. It blocks; callers run it in a goroutine.
func (s *Service) Run(ctx context.Context) error {
	s.mu.RLock()
	started := s.started
	interval := s.pollInterval
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}

	for {
		s.RunCycle(ctx)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-time.After(interval):
		}
	}
}

// RunCycle performs one full evaluation cycle and publishes its report.
func (s *Service) RunCycle(ctx context.Context) model.CycleReport {
	s.mu.Lock()
	s.sequence++
	seq := s.sequence
	s.mu.Unlock()

	cycleID := uuid.NewString()
	started := time.Now().UTC()
	log := s.logger.Named("cycle")

	chunks, err := s.builder.Build(ctx)
	if err != nil {
		if chunk.IsInsufficientData(err) {
			// A short cycle still runs; fewer chunks means less evidence,
			// not a skipped evaluation.
			metrics.RecordCycleDegraded()
			metrics.RecordCorpusExhaustion()
			log.Warn(ctx, "corpus exhausted, running degraded cycle",
				logger.String("cycleID", cycleID),
				logger.Int("chunks", len(chunks)),
				logger.Error(err),
			)
		} else {
			log.Error(ctx, "chunk build failed",
				logger.String("cycleID", cycleID),
				logger.Error(err),
			)
		}
	}

	workers := s.roster.Workers(ctx)
	metrics.UpdateRosterSize(len(workers))

	var results []model.ChunkResult
	if len(chunks) > 0 && len(workers) > 0 {
		dispatchCtx, cancel := context.WithTimeout(ctx, s.cycleTimeout)
		results = s.dispatcher.Dispatch(dispatchCtx, workers, chunks)
		cancel()
	}

	scores := s.engine.Score(workers, chunks, results)
	weights := s.allocator.Allocate(scores)

	finished := time.Now().UTC()
	rep := model.CycleReport{
		CycleID:    cycleID,
		Sequence:   seq,
		StartedAt:  started,
		FinishedAt: finished,
		Chunks:     len(chunks),
		Hands:      countHands(chunks),
		Scores:     scores,
		Weights:    weights,
	}
	s.reports.Publish(ctx, rep)

	s.recordCycleMetrics(rep)

	log.Info(ctx, "cycle complete",
		logger.String("cycleID", cycleID),
		logger.Int("sequence", seq),
		logger.Int("chunks", rep.Chunks),
		logger.Int("hands", rep.Hands),
		logger.Int("workers", len(workers)),
		logger.Float64("topComposite", topComposite(scores)),
		logger.Float64("burn", weights[model.ReservedUID]),
		logger.Float64("durationSec", finished.Sub(started).Seconds()),
	)

	return rep
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "validator service stopped")
}

// Reports exposes the published-report read side for the API.
func (s *Service) Reports() *report.Holder {
	return s.reports
}

// Roster exposes the worker roster read side for the API.
func (s *Service) Roster() *registry.Registry {
	return s.roster
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":          s.started,
		"sequence":         s.sequence,
		"batch_size":       s.batchSize,
		"chunk_width":      s.chunkWidth,
		"chunks_per_cycle": s.chunksPerCycle,
	}
	if s.started {
		stats["uptime_seconds"] = int(time.Since(s.startedAt).Seconds())
		stats["workers"] = s.roster.Count()
		stats["cycles"] = s.reports.Cycles()
	}
	return stats
}

func (s *Service) recordCycleMetrics(rep model.CycleReport) {
	metrics.RecordCycle()
	metrics.RecordCycleDuration(rep.FinishedAt.Sub(rep.StartedAt).Seconds())
	metrics.UpdateCycleShape(rep.Chunks, rep.Hands)
	metrics.UpdateLastCycleUnix(rep.FinishedAt.Unix())
	metrics.UpdateScoreboard(topComposite(rep.Scores), eligibleCount(rep.Scores))
	metrics.UpdateBurnWeight(rep.Weights[model.ReservedUID])
}

func countHands(chunks []model.Chunk) int {
	total := 0
	for _, c := range chunks {
		total += c.HandCount()
	}
	return total
}

func topComposite(scores []model.ScoreRecord) float64 {
	top := 0.0
	for _, r := range scores {
		if r.Composite > top {
			top = r.Composite
		}
	}
	return top
}

func eligibleCount(scores []model.ScoreRecord) int {
	n := 0
	for _, r := range scores {
		if r.Composite > 0 {
			n++
		}
	}
	return n
}
