package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder()
	r.Observe("run", "success", time.Second)
	r.Observe("run", "success", 2*time.Second)
	r.Observe("run", "precondition", 0)

	if got := testutil.ToFloat64(r.invocations.WithLabelValues("run", "success")); got != 2 {
		t.Errorf("success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.invocations.WithLabelValues("run", "precondition")); got != 1 {
		t.Errorf("precondition count = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(r.duration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestRecorder_LastRun(t *testing.T) {
	r := NewRecorder()
	r.now = func() time.Time { return time.Unix(1700000000, 0) }
	r.Observe("show-metrics", "failure", time.Millisecond)

	if got := testutil.ToFloat64(r.lastRun.WithLabelValues("show-metrics")); got != 1700000000 {
		t.Errorf("last run = %v", got)
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.Observe("generate-docs", "success", 300*time.Millisecond)

	path := filepath.Join(t.TempDir(), "sub", "nix-mox-metrics.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`nuext_command_invocations_total{command="generate-docs",result="success"} 1`,
		`nuext_command_duration_seconds_count{command="generate-docs"} 1`,
		"# TYPE nuext_command_invocations_total counter",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("textfile missing %q:\n%s", want, text)
		}
	}
}

func TestRecorder_PrivateRegistry(t *testing.T) {
	// Two recorders must not collide on registration.
	a, b := NewRecorder(), NewRecorder()
	a.Observe("run", "success", 0)
	if got := testutil.ToFloat64(b.invocations.WithLabelValues("run", "success")); got != 0 {
		t.Errorf("recorders share state: %v", got)
	}
}
