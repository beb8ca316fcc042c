package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tuning.yaml")
	err := os.WriteFile(p, []byte(`
protocol_version: "1.0"
tick_rate_hz: 20
reconcile_every_ticks: 5
session_evict_radius: 10.0
validate_responses: true
ledger_path: /tmp/ledger.db
listen_addr: ":9090"
`), 0o644)
	if err != nil {
		t.Fatal(err)
	}
	tn, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tn.ReconcileEveryTicks != 5 || tn.SessionEvictRadius != 10.0 {
		t.Fatalf("unexpected tuning: %+v", tn)
	}
	if tn.ListenAddr != ":9090" {
		t.Fatalf("listen_addr: %q", tn.ListenAddr)
	}
}

func TestLoad_RejectsZeroPeriod(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "tuning.yaml")
	if err := os.WriteFile(p, []byte("tick_rate_hz: 20\nreconcile_every_ticks: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error for zero reconcile period")
	}
}
