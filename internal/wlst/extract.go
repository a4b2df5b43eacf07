package wlst

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractionError reports that no authoritative JSON payload could be found
// in the runtime's output. Raw carries the original text for diagnostics.
type ExtractionError struct {
	Raw string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("no JSON payload found in %d bytes of output", len(e.Raw))
}

// strategy is one way of locating the payload inside raw output. Strategies
// run in order; the first success wins. Additional modes (for example a
// delimiter-bounded block) slot in without changing the Extractor API.
type strategy interface {
	extract(raw string) (any, bool)
}

// Extractor locates the single authoritative JSON document inside output
// that freely mixes it with banner and log lines.
type Extractor struct {
	strategies []strategy
}

// NewExtractor returns an Extractor with the compatible default strategies:
// trailing single-line JSON first, then the whole text as one document.
func NewExtractor() *Extractor {
	return &Extractor{strategies: []strategy{lastLineStrategy{}, wholeTextStrategy{}}}
}

// Extract scans raw for the payload. Identical input always yields an
// identical result. On failure it returns *ExtractionError.
//
// Known limitation, kept for compatibility with the legacy wire format: a
// pretty-printed multi-line payload that is also preceded by non-JSON lines
// defeats both strategies. Only single-line-terminal payloads and payloads
// spanning the entire text are guaranteed to parse.
func (e *Extractor) Extract(raw string) (any, error) {
	for _, s := range e.strategies {
		if v, ok := s.extract(raw); ok {
			return v, nil
		}
	}
	return nil, &ExtractionError{Raw: raw}
}

// lastLineStrategy scans lines from last to first and strictly parses the
// first line that looks like a complete JSON value. Log lines generally
// precede the payload, so scanning backwards finds it quickly.
type lastLineStrategy struct{}

func (lastLineStrategy) extract(raw string) (any, bool) {
	lines := strings.Split(raw, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if line[0] != '{' && line[0] != '[' {
			continue
		}
		if v, ok := parseStrict(line); ok {
			return v, true
		}
	}
	return nil, false
}

// wholeTextStrategy parses the entire output as one document, handling
// pretty-printed multi-line payloads with no surrounding noise.
type wholeTextStrategy struct{}

func (wholeTextStrategy) extract(raw string) (any, bool) {
	return parseStrict(strings.TrimSpace(raw))
}

// parseStrict decodes s as exactly one JSON object or array with nothing but
// whitespace after it. Scalars are not authoritative payloads.
func parseStrict(s string) (any, bool) {
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(s))
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	// Reject trailing content beyond the first document.
	if dec.More() {
		return nil, false
	}
	return v, true
}
