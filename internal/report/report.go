package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sunishkjoseph/mwhealth/internal/orchestrator"
)

// Document is the combined report written after a run: one entry per check,
// failures included so a report never silently drops a check.
type Document struct {
	GeneratedAt string                `json:"generated_at"`
	Checks      map[string]CheckEntry `json:"checks"`
}

// CheckEntry is one check's slice of the combined report.
type CheckEntry struct {
	Status     string               `json:"status"`
	RunID      string               `json:"run_id,omitempty"`
	ExitCode   int                  `json:"exit_code"`
	DurationMs int                  `json:"duration_ms,omitempty"`
	Diagnostic string               `json:"diagnostic,omitempty"`
	Categories map[string]any       `json:"categories,omitempty"`
	Result     *orchestrator.Result `json:"-"`
}

// Writer renders combined reports into a directory.
type Writer struct {
	dir string
}

// NewWriter creates a Writer targeting dir, creating it if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report directory %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// Build assembles a Document from run outcomes.
func Build(outcomes []orchestrator.Outcome, at time.Time) Document {
	doc := Document{
		GeneratedAt: at.UTC().Format(time.RFC3339),
		Checks:      make(map[string]CheckEntry, len(outcomes)),
	}
	for _, out := range outcomes {
		if out.Err != nil {
			entry := CheckEntry{Status: "failed"}
			var ce *orchestrator.CheckError
			if errors.As(out.Err, &ce) {
				entry.Status = string(ce.Kind)
				entry.Diagnostic = ce.Diagnostic
			} else {
				entry.Diagnostic = out.Err.Error()
			}
			doc.Checks[out.Check] = entry
			continue
		}
		r := out.Result
		categories := make(map[string]any, len(r.Categories))
		for cat, coll := range r.Categories {
			categories[cat] = coll
		}
		doc.Checks[out.Check] = CheckEntry{
			Status:     string(r.Status),
			RunID:      r.RunID,
			ExitCode:   r.ExitCode,
			DurationMs: r.DurationMs,
			Diagnostic: r.Diagnostic,
			Categories: categories,
			Result:     r,
		}
	}
	return doc
}

// WriteJSON writes the combined JSON report and returns its path. The file
// name carries the document's UTC timestamp, matching the legacy wrapper's
// output.
func (w *Writer) WriteJSON(doc Document) (string, error) {
	name := fmt.Sprintf("middleware_health_report_%s.json", compactTimestamp(doc.GeneratedAt))
	path := filepath.Join(w.dir, name)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report %s: %w", path, err)
	}
	return path, nil
}

// compactTimestamp turns an RFC3339 UTC timestamp into the 20060102T150405Z
// form used in report file names.
func compactTimestamp(generatedAt string) string {
	return strings.NewReplacer("-", "", ":", "").Replace(generatedAt)
}
