package wlst

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestExtract_TrailingSingleLinePayload(t *testing.T) {
	raw := `Initializing WebLogic Scripting Tool (WLST) ...
Welcome to WebLogic Server Administration Scripting Shell
INFO: connecting...
INFO: fetched 2 clusters
{"clusters": [{"name":"C1","state":"RUNNING"},{"state":"RUNNING"}]}`

	e := NewExtractor()
	v, err := e.Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj, ok := v.(map[string]any)
	if !ok {
		t.Fatalf("expected object payload, got %T", v)
	}
	clusters, ok := obj["clusters"].([]any)
	if !ok || len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %v", obj["clusters"])
	}
}

func TestExtract_WholeTextPrettyPrinted(t *testing.T) {
	raw := `{
  "check": "threads",
  "threads": [
    {"server": "ms1", "stuckThreadCount": 0}
  ]
}`

	e := NewExtractor()
	v, err := e.Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj := v.(map[string]any)
	if obj["check"] != "threads" {
		t.Errorf("expected check=threads, got %v", obj["check"])
	}
}

func TestExtract_ArrayRoot(t *testing.T) {
	raw := "banner line\n[1, 2, 3]"

	e := NewExtractor()
	v, err := e.Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := v.([]any); !ok {
		t.Fatalf("expected array payload, got %T", v)
	}
}

func TestExtract_LastPayloadWins(t *testing.T) {
	// Scanning runs from the last line backwards, so the terminal document
	// is authoritative even when earlier lines also parse.
	raw := `{"stale": true}
some log noise
{"fresh": true}`

	e := NewExtractor()
	v, err := e.Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj := v.(map[string]any)
	if obj["fresh"] != true {
		t.Errorf("expected the terminal payload, got %v", obj)
	}
}

func TestExtract_SkipsTrailingNoiseAfterPayload(t *testing.T) {
	raw := `{"clusters": []}
[INFO] disconnecting`

	e := NewExtractor()
	v, err := e.Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj := v.(map[string]any)
	if _, ok := obj["clusters"]; !ok {
		t.Errorf("expected clusters payload, got %v", obj)
	}
}

func TestExtract_NoPayload(t *testing.T) {
	e := NewExtractor()
	_, err := e.Extract("INFO: nothing here\nWARN: still nothing")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var exErr *ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("expected *ExtractionError, got %T", err)
	}
	if exErr.Raw == "" {
		t.Error("expected original text preserved for diagnostics")
	}
}

func TestExtract_EmptyInput(t *testing.T) {
	e := NewExtractor()
	if _, err := e.Extract(""); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestExtract_RejectsLineWithTrailingGarbage(t *testing.T) {
	// "{...} extra" is not a complete value on its own; the earlier clean
	// payload must be found instead.
	raw := `{"good": 1}
{"bad": 1} trailing tokens`

	e := NewExtractor()
	v, err := e.Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	obj := v.(map[string]any)
	if obj["good"] != float64(1) {
		t.Errorf("expected the clean payload, got %v", obj)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	raw := "noise\n" + `{"servers": [{"name": "ms1", "state": "RUNNING"}]}`
	e := NewExtractor()

	first, err := e.Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := e.Extract(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("extraction is not deterministic for identical input")
	}
}

func TestExtract_RoundTripThroughNoise(t *testing.T) {
	payloads := []string{
		`{"a":1,"b":[1,2,3]}`,
		`[{"name":"x"},{"name":"y"}]`,
		`{"nested":{"deep":{"value":"ok"}}}`,
	}
	e := NewExtractor()

	for _, p := range payloads {
		noisy := "WLST banner\n[INFO] connected\n\n" + p
		got, err := e.Extract(noisy)
		if err != nil {
			t.Fatalf("extract %q: %v", p, err)
		}
		var want any
		mustUnmarshal(t, p, &want)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("round-trip mismatch for %q: got %v want %v", p, got, want)
		}
	}
}

func mustUnmarshal(t *testing.T, s string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(s), v); err != nil {
		t.Fatalf("unmarshal %q: %v", s, err)
	}
}
