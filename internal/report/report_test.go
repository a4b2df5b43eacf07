package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sunishkjoseph/mwhealth/internal/normalize"
	"github.com/sunishkjoseph/mwhealth/internal/orchestrator"
)

func sampleOutcomes() []orchestrator.Outcome {
	return []orchestrator.Outcome{
		{
			Check: "cluster",
			Result: &orchestrator.Result{
				RunID:  "run-1",
				Check:  "cluster",
				Status: orchestrator.StatusOK,
				Categories: map[string]normalize.Collection{
					"clusters": {
						"C1": map[string]any{"name": "C1", "state": "RUNNING"},
					},
				},
				DurationMs: 420,
			},
		},
		{
			Check: "jms",
			Err: &orchestrator.CheckError{
				Check:      "jms",
				Kind:       orchestrator.KindUnavailable,
				Diagnostic: "connection refused",
				Err:        errors.New("legacy runtime exited with code 1"),
			},
		},
	}
}

func TestBuild_IncludesFailures(t *testing.T) {
	doc := Build(sampleOutcomes(), time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))

	if doc.GeneratedAt != "2024-06-01T10:00:00Z" {
		t.Errorf("unexpected timestamp: %q", doc.GeneratedAt)
	}
	if len(doc.Checks) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(doc.Checks))
	}

	ok := doc.Checks["cluster"]
	if ok.Status != "ok" || ok.RunID != "run-1" {
		t.Errorf("unexpected cluster entry: %+v", ok)
	}

	failed := doc.Checks["jms"]
	if failed.Status != "unavailable" {
		t.Errorf("expected unavailable, got %q", failed.Status)
	}
	if failed.Diagnostic != "connection refused" {
		t.Errorf("diagnostic lost: %q", failed.Diagnostic)
	}
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	doc := Build(sampleOutcomes(), time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	path, err := w.WriteJSON(doc)
	if err != nil {
		t.Fatalf("write json: %v", err)
	}
	if filepath.Base(path) != "middleware_health_report_20240601T100000Z.json" {
		t.Errorf("unexpected file name: %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var got Document
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if _, ok := got.Checks["cluster"]; !ok {
		t.Errorf("cluster entry missing from %v", got.Checks)
	}
}

func TestWriteHTML(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}

	outcomes := sampleOutcomes()
	// Give the cluster's server record heap figures to exercise the
	// humanized rendering.
	outcomes[0].Result.Categories["servers"] = normalize.Collection{
		"ms1": map[string]any{
			"name":        "ms1",
			"state":       "RUNNING",
			"health":      "HEALTH_OK",
			"heapCurrent": float64(536870912),
			"heapMax":     float64(1073741824),
		},
	}

	doc := Build(outcomes, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	path, err := w.WriteHTML(doc)
	if err != nil {
		t.Fatalf("write html: %v", err)
	}
	if filepath.Base(path) != "middleware_health_report_20240601T100000Z.html" {
		t.Errorf("unexpected file name: %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read html: %v", err)
	}
	html := string(data)
	for _, want := range []string{"C1", "RUNNING", "512MiB / 1GiB", "connection refused", "unavailable"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestCategoryRows_SortedAndSyntheticRecords(t *testing.T) {
	rows := categoryRows(normalize.Collection{
		"b":                map[string]any{"state": "RUNNING"},
		"a":                map[string]any{"state": "SHUTDOWN"},
		"clusters_error_1": map[string]any{"name": "ERROR", "detail": "fetch failed"},
	})

	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].Key != "a" || rows[1].Key != "b" {
		t.Errorf("rows not sorted: %+v", rows)
	}
	if rows[2].Detail != "fetch failed" {
		t.Errorf("synthetic record detail lost: %+v", rows[2])
	}
}
