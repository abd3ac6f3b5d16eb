package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/surgehq/surge/internal/config"
	"github.com/surgehq/surge/internal/metrics"
	"github.com/surgehq/surge/internal/output"
)

func reportFixtures() ([]metrics.RunSummary, metrics.GlobalSummary) {
	runs := []metrics.RunSummary{
		metrics.NewRunSummary(1, "run-1", []metrics.Outcome{
			{Endpoint: "/balance", Success: true, Status: 200, LatencyMs: 10},
		}, 500*time.Millisecond, []string{"/balance"}),
	}
	return runs, metrics.Merge(runs)
}

func TestPrintReportsAfterDashboard(t *testing.T) {
	runs, global := reportFixtures()
	var buf bytes.Buffer

	if err := printReports(&buf, &config.Config{Dashboard: true}, runs, global); err != nil {
		t.Fatalf("printReports: %v", err)
	}
	got := buf.String()
	// Dashboard runs suppress in-loop printing, so the tables must all
	// appear here.
	if !strings.Contains(got, "--- Run 1 (run-1, 500ms) ---") {
		t.Errorf("per-run table missing after a dashboard run:\n%s", got)
	}
	if !strings.Contains(got, "--- Merged Summary (1 runs, 500ms) ---") {
		t.Errorf("merged summary missing after a dashboard run:\n%s", got)
	}
	if !strings.Contains(got, "/balance") {
		t.Errorf("endpoint rows missing:\n%s", got)
	}
}

func TestPrintReportsPlainRun(t *testing.T) {
	runs, global := reportFixtures()
	var buf bytes.Buffer

	if err := printReports(&buf, &config.Config{}, runs, global); err != nil {
		t.Fatalf("printReports: %v", err)
	}
	got := buf.String()
	// Per-run tables were already printed as each run finished.
	if strings.Contains(got, "--- Run 1") {
		t.Errorf("per-run table duplicated for a plain run:\n%s", got)
	}
	if !strings.Contains(got, "--- Merged Summary") {
		t.Errorf("merged summary missing:\n%s", got)
	}
}

func TestPrintReportsJSON(t *testing.T) {
	runs, global := reportFixtures()
	var buf bytes.Buffer

	if err := printReports(&buf, &config.Config{JSONOutput: true}, runs, global); err != nil {
		t.Fatalf("printReports: %v", err)
	}
	var decoded output.Result
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Runs) != 1 || decoded.Global.Runs != 1 {
		t.Fatalf("decoded report lost data: %+v", decoded)
	}
}
