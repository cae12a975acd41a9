package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAssignment(t *testing.T) {
	before := testutil.ToFloat64(AssignmentsTotal.WithLabelValues("ai", "modern"))
	RecordAssignment("ai", "modern")
	RecordAssignment("ai", "modern")

	if got := testutil.ToFloat64(AssignmentsTotal.WithLabelValues("ai", "modern")); got != before+2 {
		t.Errorf("expected counter to grow by 2, got %v -> %v", before, got)
	}
}

func TestRecordAnalysisFailure(t *testing.T) {
	before := testutil.ToFloat64(AnalysisFailuresTotal.WithLabelValues("timeout"))
	RecordAnalysisFailure("timeout")

	if got := testutil.ToFloat64(AnalysisFailuresTotal.WithLabelValues("timeout")); got != before+1 {
		t.Errorf("expected counter to grow by 1, got %v -> %v", before, got)
	}
}

func TestObserveAnalysis(t *testing.T) {
	ObserveAnalysis("heuristic", 0.002)

	if n := testutil.CollectAndCount(AnalysisDuration); n == 0 {
		t.Error("expected at least one histogram series")
	}
}
