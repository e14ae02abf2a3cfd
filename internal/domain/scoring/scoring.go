// Package scoring turns a cycle's worker evidence into composite scores.
package scoring

import (
	"sort"

	"github.com/okian/tellsight/internal/domain/model"
)

// Default composite configuration. The false-positive cutoff is a hard
// floor: a worker flagging 10% or more of real humans as bots scores zero
// no matter how strong its precision or recall is.
const (
	defaultAPWeight     = 0.65
	defaultRecallWeight = 0.35
	defaultFPRCutoff    = 0.10
)

// Engine computes one ScoreRecord per worker per cycle. Scoring is a pure
// accumulation over tagged chunk outcomes and never fails: absent or
// invalid evidence yields a zero score, not an error.
type Engine struct {
	apWeight     float64
	recallWeight float64
	fprCutoff    float64
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeights overrides the AP/recall blend. Both weights must be positive.
func WithWeights(ap, recall float64) Option {
	return func(e *Engine) {
		if ap > 0 && recall > 0 {
			e.apWeight = ap
			e.recallWeight = recall
		}
	}
}

// WithFPRCutoff overrides the human-safety cutoff.
func WithFPRCutoff(cutoff float64) Option {
	return func(e *Engine) {
		if cutoff > 0 && cutoff <= 1 {
			e.fprCutoff = cutoff
		}
	}
}

// New creates an Engine with the default composite parameters.
func New(opts ...Option) *Engine {
	e := &Engine{
		apWeight:     defaultAPWeight,
		recallWeight: defaultRecallWeight,
		fprCutoff:    defaultFPRCutoff,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sample is one scored prediction paired with its ground truth.
type sample struct {
	risk  float64
	guess bool // binary "bot" guess
	bot   bool // ground truth
	order int  // arrival order, used for stable tie-breaks
}

// Score aggregates every worker's valid chunk results against ground truth.
// One record is always produced per worker, ordered by UID ascending so the
// output is reproducible for identical inputs.
func (e *Engine) Score(workers []model.Worker, chunks []model.Chunk, results []model.ChunkResult) []model.ScoreRecord {
	labels := make(map[int][]model.Label, len(chunks))
	for _, c := range chunks {
		labels[c.Index] = c.Labels()
	}

	evidence := make(map[int][]sample, len(workers))
	for _, res := range results {
		if res.Status != model.StatusOK {
			continue
		}
		truth, ok := labels[res.Chunk]
		if !ok || len(truth) != len(res.Predictions) {
			// Defensive: a mismatched result should have been tagged invalid
			// upstream. It contributes nothing here either way.
			continue
		}
		acc := evidence[res.UID]
		for i, p := range res.Predictions {
			acc = append(acc, sample{
				risk:  p.Risk,
				guess: p.Bot,
				bot:   truth[i] == model.LabelBot,
				order: len(acc),
			})
		}
		evidence[res.UID] = acc
	}

	records := make([]model.ScoreRecord, 0, len(workers))
	for _, w := range workers {
		records = append(records, e.scoreWorker(w.UID, evidence[w.UID]))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].UID < records[j].UID })
	return records
}

// scoreWorker reduces one worker's samples to a record.
func (e *Engine) scoreWorker(uid int, samples []sample) model.ScoreRecord {
	rec := model.ScoreRecord{UID: uid, Evidence: len(samples)}
	if len(samples) == 0 {
		return rec
	}

	var tp, fn, fp, tn int
	for _, s := range samples {
		switch {
		case s.bot && s.guess:
			tp++
		case s.bot && !s.guess:
			fn++
		case !s.bot && s.guess:
			fp++
		default:
			tn++
		}
	}

	rec.BotRecall = float64(tp) / float64(max(tp+fn, 1))
	rec.FalsePositiveRate = float64(fp) / float64(max(fp+tn, 1))
	rec.AveragePrecision = averagePrecision(samples)

	penalty := 1.0 - rec.FalsePositiveRate
	if penalty < 0 {
		penalty = 0
	}
	penalty *= penalty
	if rec.FalsePositiveRate >= e.fprCutoff {
		penalty = 0
	}
	rec.SafetyPenalty = penalty

	base := e.apWeight*rec.AveragePrecision + e.recallWeight*rec.BotRecall
	rec.Composite = base * penalty
	return rec
}

// averagePrecision integrates precision over the recall steps of the
// ranking induced by descending risk. Ties keep their arrival order so the
// result is deterministic for identical inputs.
func averagePrecision(samples []sample) float64 {
	positives := 0
	for _, s := range samples {
		if s.bot {
			positives++
		}
	}
	if positives == 0 {
		return 0
	}

	ranked := make([]sample, len(samples))
	copy(ranked, samples)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].risk != ranked[j].risk {
			return ranked[i].risk > ranked[j].risk
		}
		return ranked[i].order < ranked[j].order
	})

	var ap float64
	tp := 0
	for k, s := range ranked {
		if !s.bot {
			continue
		}
		tp++
		precision := float64(tp) / float64(k+1)
		ap += precision / float64(positives)
	}
	return ap
}
