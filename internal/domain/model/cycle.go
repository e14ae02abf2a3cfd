package model

import "time"

// ReservedUID is the protocol-level sink that receives the burned share of
// every cycle's weight.
const ReservedUID = 0

// Worker identifies a registered worker endpoint. Owned by the registry;
// the evaluation core only reads it.
type Worker struct {
	UID int    `json:"uid" koanf:"uid" validate:"min=0"`
	URL string `json:"url" koanf:"url" validate:"required,url"`
}

// Prediction is a worker's answer for one hand: a calibrated risk score in
// [0,1] plus a derived binary guess.
type Prediction struct {
	Risk float64 `json:"risk" validate:"min=0,max=1"`
	Bot  bool    `json:"bot"`
}

// ScoreRecord aggregates one worker's evidence for one cycle.
type ScoreRecord struct {
	UID               int     `json:"uid"`
	AveragePrecision  float64 `json:"average_precision"`
	BotRecall         float64 `json:"bot_recall"`
	FalsePositiveRate float64 `json:"false_positive_rate"`
	SafetyPenalty     float64 `json:"safety_penalty"`
	Composite         float64 `json:"composite"`
	// Evidence counts the hands that contributed to this record. Zero means
	// the worker returned no valid chunk response this cycle.
	Evidence int `json:"evidence"`
}

// WeightVector maps worker UIDs to their reward fraction for a cycle.
// Allocations sum to exactly 1.
type WeightVector map[int]float64

// Sum returns the total allocated weight.
func (w WeightVector) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// CycleReport is the per-cycle outcome consumed by logs and the admin API.
type CycleReport struct {
	CycleID    string        `json:"cycle_id"`
	Sequence   int           `json:"sequence"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Chunks     int           `json:"chunks"`
	Hands      int           `json:"hands"`
	Scores     []ScoreRecord `json:"scores"`
	Weights    WeightVector  `json:"weights"`
}
