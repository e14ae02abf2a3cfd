// Package dispatch fans chunks out to every registered worker endpoint and
// collects tagged per-chunk outcomes.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/okian/tellsight/internal/domain/model"
	"github.com/okian/tellsight/pkg/logger"
	"github.com/okian/tellsight/pkg/metrics"
)

// Default dispatcher configuration constants.
const (
	defaultRequestTimeout = 20 * time.Second
	defaultClassifyPath   = "/classify"
	maxResponseBytes      = 16 << 20
)

// Dispatcher sends each cycle's chunks to every worker concurrently, one
// independent round-trip sequence per worker, bounded by a per-request
// timeout. No retries: a missed chunk is simply absent from that worker's
// evidence for the cycle.
type Dispatcher struct {
	client   *http.Client
	timeout  time.Duration
	path     string
	validate *validator.Validate
	logger   logger.Logger
}

// Option applies a configuration option to the Dispatcher.
type Option func(*Dispatcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(disp *Dispatcher) {
		if d > 0 {
			disp.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying client (tests, custom transports).
func WithHTTPClient(c *http.Client) Option {
	return func(disp *Dispatcher) {
		if c != nil {
			disp.client = c
		}
	}
}

// WithClassifyPath overrides the worker endpoint path.
func WithClassifyPath(p string) Option {
	return func(disp *Dispatcher) {
		if p != "" {
			disp.path = p
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(disp *Dispatcher) {
		if l != nil {
			disp.logger = l
		}
	}
}

// New creates a Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		client:   &http.Client{},
		timeout:  defaultRequestTimeout,
		path:     defaultClassifyPath,
		validate: validator.New(),
		logger:   logger.Get().Named("dispatch"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch sends every chunk to every worker. The returned slice holds one
// result per worker-chunk pair; outcomes are written to disjoint indices so
// no locking is needed across worker tasks. Cancelling ctx (the cycle
// deadline) abandons still-pending round trips; their late responses are
// discarded with the connection.
func (d *Dispatcher) Dispatch(ctx context.Context, workers []model.Worker, chunks []model.Chunk) []model.ChunkResult {
	results := make([]model.ChunkResult, len(workers)*len(chunks))

	g := new(errgroup.Group)
	for wi, w := range workers {
		wi, w := wi, w
		g.Go(func() error {
			for ci, c := range chunks {
				results[wi*len(chunks)+ci] = d.send(ctx, w, c)
			}
			return nil
		})
	}
	_ = g.Wait() // worker tasks never return errors; failures become outcomes

	return results
}

// send performs one worker-chunk round trip and tags the outcome.
func (d *Dispatcher) send(ctx context.Context, w model.Worker, c model.Chunk) model.ChunkResult {
	out := model.ChunkResult{UID: w.UID, Chunk: c.Index}

	reqCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	preds, err := d.roundTrip(reqCtx, w, c)
	metrics.RecordDispatchLatency(float64(time.Since(start).Milliseconds()))

	switch {
	case err == nil:
		out.Status = model.StatusOK
		out.Predictions = preds
	case reqCtx.Err() != nil:
		// Timed out or the cycle deadline elapsed: a non-response.
		out.Status = model.StatusTimeout
	default:
		out.Status = model.StatusInvalid
		d.logger.Debug(ctx, "worker response rejected",
			logger.Int("uid", w.UID),
			logger.Int("chunk", c.Index),
			logger.Error(err),
		)
	}

	metrics.RecordWorkerResponse(out.Status.String())
	return out
}

// roundTrip posts the stripped chunk and validates the response
// structurally. Any validation failure invalidates the entire chunk
// response; partial or garbled responses are never scored.
func (d *Dispatcher) roundTrip(ctx context.Context, w model.Worker, c model.Chunk) ([]model.Prediction, error) {
	payload := stripChunk(c)
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal chunk %d: %w", c.Index, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL+d.path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request for uid %d: %w", w.UID, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("round trip to uid %d: %w", w.UID, err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d from uid %d", ErrBadStatus, resp.StatusCode, w.UID)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response from uid %d: %w", w.UID, err)
	}

	var cr classifyResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, fmt.Errorf("decode response from uid %d: %w", w.UID, err)
	}
	if err := d.validate.Struct(cr); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}
	if len(cr.Predictions) != len(payload.Hands) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrCardinality, len(cr.Predictions), len(payload.Hands))
	}
	for i, p := range cr.Predictions {
		if math.IsNaN(p.Risk) || math.IsInf(p.Risk, 0) {
			return nil, fmt.Errorf("%w: prediction %d is not finite", ErrOutOfRange, i)
		}
	}
	return cr.Predictions, nil
}
