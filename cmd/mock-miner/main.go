// Command mock-miner runs a stand-in worker endpoint for local testing.
// It answers POST /classify with timing-heuristic predictions, and can be
// degraded on purpose to exercise the validator's failure handling.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/tellsight/internal/domain/model"
	"github.com/okian/tellsight/pkg/logger"
)

type chunkRequest struct {
	SchemaVersion int `json:"schema_version"`
	Chunk         int `json:"chunk"`
	Hands         []struct {
		ID      string            `json:"id"`
		Events  []model.HandEvent `json:"events"`
		Timings []float64         `json:"timings"`
		Context model.HandContext `json:"context"`
	} `json:"hands"`
}

type classifyResponse struct {
	Predictions []model.Prediction `json:"predictions"`
}

type miner struct {
	mode  string
	delay time.Duration
	log   logger.Logger
}

func (m *miner) handleClassify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	var req chunkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch m.mode {
	case "malformed":
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"predictions": "not-a-list"}`))
		return
	case "error":
		http.Error(w, "model not loaded", http.StatusInternalServerError)
		return
	}

	resp := classifyResponse{Predictions: make([]model.Prediction, len(req.Hands))}
	for i, h := range req.Hands {
		switch m.mode {
		case "all-bot":
			resp.Predictions[i] = model.Prediction{Risk: 0.9, Bot: true}
		default:
			resp.Predictions[i] = classify(h.Timings)
		}
	}

	m.log.Debug(r.Context(), "classified chunk",
		logger.Int("chunk", req.Chunk),
		logger.Int("hands", len(req.Hands)),
	)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// classify scores a hand by its think-time signature. Machine play tends
// toward fast, low-variance decisions; the risk blends both signals.
func classify(timings []float64) model.Prediction {
	if len(timings) == 0 {
		return model.Prediction{Risk: 0.5, Bot: false}
	}
	mean := 0.0
	for _, t := range timings {
		mean += t
	}
	mean /= float64(len(timings))

	variance := 0.0
	for _, t := range timings {
		variance += (t - mean) * (t - mean)
	}
	variance /= float64(len(timings))

	// Fast play pushes risk up, as does metronomic regularity.
	speed := math.Exp(-mean / 5.0)
	regularity := math.Exp(-variance)
	risk := 0.6*speed + 0.4*regularity
	if risk > 1 {
		risk = 1
	}
	return model.Prediction{Risk: risk, Bot: risk >= 0.5}
}

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	mode := flag.String("mode", "heuristic", "behavior: heuristic, all-bot, malformed, error")
	delay := flag.Duration("delay", 0, "artificial response delay")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Named("mock-miner")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := &miner{mode: *mode, delay: *delay, log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/classify", m.handleClassify)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info(ctx, "mock miner listening",
			logger.String("addr", *addr),
			logger.String("mode", *mode),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("mock miner failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
