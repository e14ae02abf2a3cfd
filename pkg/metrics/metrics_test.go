package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestManagerRegistersOnCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewManager(WithPrometheusRegistry(reg), WithNamespace("test"), WithSubsystem("cycle"))

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected metrics registered on the custom registry")
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "test_cycle_") {
			t.Errorf("metric %s missing namespace/subsystem prefix", mf.GetName())
		}
	}
}

func TestGlobalHelpers(t *testing.T) {
	before := testutil.ToFloat64(globalManager.cyclesTotal)
	RecordCycle()
	RecordCycle()
	after := testutil.ToFloat64(globalManager.cyclesTotal)
	if after-before != 2 {
		t.Errorf("expected cycle counter to advance by 2, got %v", after-before)
	}

	UpdateCycleShape(8, 320)
	if got := testutil.ToFloat64(globalManager.chunksPerCycle); got != 8 {
		t.Errorf("chunksPerCycle = %v, want 8", got)
	}
	if got := testutil.ToFloat64(globalManager.handsPerCycle); got != 320 {
		t.Errorf("handsPerCycle = %v, want 320", got)
	}

	UpdateBurnWeight(0.97)
	if got := testutil.ToFloat64(globalManager.burnWeight); got != 0.97 {
		t.Errorf("burnWeight = %v, want 0.97", got)
	}

	RecordWorkerResponse("timeout")
	if got := testutil.ToFloat64(globalManager.workerResponses.WithLabelValues("timeout")); got < 1 {
		t.Errorf("expected timeout response counted, got %v", got)
	}
}
