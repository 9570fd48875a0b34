package metrics

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()
	if m == nil {
		t.Fatal("NewMetrics returned nil")
	}
	if m.handler == nil {
		t.Error("Metrics.handler should be initialized")
	}
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < 5; i++ {
		m.IterationDone()
	}
	m.IterationFailed()
	m.ObserveRun("parallel", nil, 20*time.Millisecond)
	m.ObserveRun("sequential", errors.New("singular"), time.Millisecond)

	if got := testutil.ToFloat64(m.iterations); got != 5 {
		t.Errorf("iterations = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.failed); got != 1 {
		t.Errorf("failed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("parallel", "success")); got != 1 {
		t.Errorf("parallel successes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("sequential", "error")); got != 1 {
		t.Errorf("sequential errors = %v, want 1", got)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.IterationDone()
	m.IterationFailed()
	m.ObserveRun("parallel", nil, time.Second)
	m.ObserveMemory(ReadMemory())
}

func TestMetrics_WritePrometheus(t *testing.T) {
	m := NewMetrics()
	m.IterationDone()
	m.ObserveMemory(MemorySnapshot{HeapAlloc: 2048})

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, req)

	body := rec.Body.String()
	for _, want := range []string{"medboot_iterations_total", "medboot_heap_alloc_bytes 2048", "go_goroutines"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output should contain %q", want)
		}
	}
}

func TestMetrics_WriteText(t *testing.T) {
	m := NewMetrics()
	m.ObserveRun("parallel", nil, time.Millisecond)

	var buf bytes.Buffer
	if err := m.WriteText(&buf); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	if !strings.Contains(buf.String(), `medboot_runs_total{mode="parallel",outcome="success"} 1`) {
		t.Errorf("unexpected exposition:\n%s", buf.String())
	}
}
