package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sunishkjoseph/mwhealth/internal/config"
	"github.com/sunishkjoseph/mwhealth/internal/normalize"
	"github.com/sunishkjoseph/mwhealth/internal/wlst"
)

// Status distinguishes a clean result from one recovered out of a failing
// subprocess under the relaxed policy.
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
)

// Result is the typed outcome of one check handed back to the CLI/report
// layer.
type Result struct {
	RunID       string                          `json:"run_id"`
	Check       string                          `json:"check"`
	Status      Status                          `json:"status"`
	GeneratedAt string                          `json:"generated_at,omitempty"`
	Source      string                          `json:"source,omitempty"`
	Categories  map[string]normalize.Collection `json:"categories"`
	Diagnostic  string                          `json:"diagnostic,omitempty"`
	ExitCode    int                             `json:"exit_code"`
	DurationMs  int                             `json:"duration_ms"`
}

// HistoryWriter persists run outcomes. Implemented by the db package; nil
// disables persistence.
type HistoryWriter interface {
	WriteRun(ctx context.Context, rec RunRecord) error
}

// RunRecord is one history row.
type RunRecord struct {
	RunID      string
	Check      string
	Status     string // ok, partial, or a failure Kind
	ExitCode   int
	DurationMs int
	Diagnostic string
	Categories int
}

// checkCategories maps a check type to the payload category fields it is
// expected to produce.
var checkCategories = map[string][]string{
	"cluster":         {"clusters"},
	"managed_servers": {"servers"},
	"jms":             {"jmsServers"},
	"threads":         {"threads"},
	"datasource":      {"datasources"},
	"deployments":     {"deployments"},
	"composites":      {"composites"},
	"all":             {"clusters", "servers", "jmsServers", "threads", "datasources", "deployments", "composites"},
}

// maxDiagnosticLen caps how much subprocess output a diagnostic retains.
// The tail is kept; error summaries usually sit at the end.
const maxDiagnosticLen = 4000

// Orchestrator sequences invocation, extraction, and normalization per
// check, applying the continue-on-error policy. The error counters are owned
// here and live for the whole process, not per invocation.
type Orchestrator struct {
	cfg      config.Config
	invoker  wlst.Invoker
	extract  *wlst.Extractor
	norm     *normalize.Normalizer
	history  HistoryWriter
	log      *slog.Logger
	parallel int
}

// Option tweaks orchestrator construction.
type Option func(*Orchestrator)

// WithHistory records every run outcome through w.
func WithHistory(w HistoryWriter) Option {
	return func(o *Orchestrator) { o.history = w }
}

// WithLogger replaces the default slog logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithParallel allows up to n checks to run concurrently in RunAll. Values
// below 2 keep the default sequential behavior: every check spawns a
// heavyweight process against the live middleware, so concurrency is opt-in.
func WithParallel(n int) Option {
	return func(o *Orchestrator) { o.parallel = n }
}

// New creates an Orchestrator. counters must be shared across all
// orchestrators that report into the same output, and is never reset.
func New(cfg config.Config, invoker wlst.Invoker, counters *normalize.Counters, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		invoker: invoker,
		extract: wlst.NewExtractor(),
		norm:    normalize.NewNormalizer(counters),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RunCheck executes one check end to end: Invoking → Extracting →
// Normalizing. Normalization failures never fail the check; they degrade to
// synthetic ERROR records inside the affected category.
func (o *Orchestrator) RunCheck(ctx context.Context, checkType string) (*Result, error) {
	categories, ok := checkCategories[checkType]
	if !ok {
		return nil, &CheckError{
			Check: checkType,
			Kind:  KindConfigInvalid,
			Err:   fmt.Errorf("unrecognized check type %q", checkType),
		}
	}

	start := time.Now()
	raw, err := o.invoker.Invoke(ctx, wlst.Request{
		Executable: o.cfg.WLSTPath,
		Script:     o.cfg.WLSTScript,
		CheckType:  checkType,
		AdminURL:   o.cfg.AdminURL,
		Username:   o.cfg.Username,
		Password:   o.cfg.Password,
		Fixture:    o.cfg.SampleOutput,
		Timeout:    o.cfg.Timeout,
	})
	durationMs := int(time.Since(start).Milliseconds())

	if err != nil {
		return nil, o.invokeError(checkType, err)
	}

	if raw.ExitCode != 0 && !o.cfg.ContinueOnError {
		return nil, &CheckError{
			Check:      checkType,
			Kind:       KindUnavailable,
			Phase:      PhaseInvoking,
			Diagnostic: diagnosticTail(raw),
			Err:        fmt.Errorf("legacy runtime exited with code %d", raw.ExitCode),
		}
	}

	payload, err := o.extract.Extract(raw.Stdout)
	if err != nil {
		// Under the relaxed policy a nonzero exit is tolerated only when
		// some payload could still be recovered.
		return nil, &CheckError{
			Check:      checkType,
			Kind:       KindUnavailable,
			Phase:      PhaseExtracting,
			Diagnostic: diagnosticTail(raw),
			Err:        err,
		}
	}

	result := o.buildResult(checkType, categories, payload)
	result.ExitCode = raw.ExitCode
	result.DurationMs = durationMs

	if result.Status == "" {
		// The legacy script's connect-failure shape: a payload whose only
		// content is an error field.
		return nil, &CheckError{
			Check:      checkType,
			Kind:       KindUnavailable,
			Phase:      PhaseExtracting,
			Diagnostic: result.Diagnostic,
			Err:        errors.New("payload carried an error and no category data"),
		}
	}

	if raw.ExitCode != 0 {
		result.Status = StatusPartial
		result.Diagnostic = diagnosticTail(raw)
	}
	return result, nil
}

// invokeError maps invoker failures onto the error taxonomy.
func (o *Orchestrator) invokeError(checkType string, err error) *CheckError {
	kind := KindSpawnFailed
	if errors.Is(err, wlst.ErrTimeout) {
		kind = KindTimeout
	}
	return &CheckError{
		Check: checkType,
		Kind:  kind,
		Phase: PhaseInvoking,
		Err:   err,
	}
}

// buildResult normalizes the payload's category fields into keyed
// collections. A Status of "" signals an error-only payload.
func (o *Orchestrator) buildResult(checkType string, categories []string, payload any) *Result {
	result := &Result{
		RunID:      uuid.NewString(),
		Check:      checkType,
		Status:     StatusOK,
		Categories: make(map[string]normalize.Collection),
	}

	root, ok := payload.(map[string]any)
	if !ok {
		// Array-rooted payloads are the check's primary category with the
		// envelope omitted.
		result.Categories[categories[0]] = o.normalizeCategory(categories[0], payload)
		return result
	}

	if s, ok := root["generatedAt"].(string); ok {
		result.GeneratedAt = s
	}
	if s, ok := root["source"].(string); ok {
		result.Source = s
	}

	found := 0
	for _, cat := range categories {
		value, present := root[cat]
		if !present {
			continue
		}
		found++
		result.Categories[cat] = o.normalizeCategory(cat, value)
	}

	if found == 0 {
		if msg, ok := root["error"].(string); ok {
			result.Status = ""
			result.Diagnostic = msg
		}
	}
	return result
}

// normalizeCategory converts one category value into a Collection,
// substituting a synthetic record when the value has no usable shape.
func (o *Orchestrator) normalizeCategory(category string, value any) normalize.Collection {
	switch v := o.norm.Normalize(category, value).(type) {
	case normalize.Collection:
		return v
	case map[string]any:
		return normalize.Collection(v)
	default:
		coll := make(normalize.Collection)
		o.norm.AddError(coll, category, fmt.Sprintf("unexpected %T value for category", value))
		return coll
	}
}

// Outcome pairs a check with either its result or its typed error.
type Outcome struct {
	Check  string
	Result *Result
	Err    error
}

// RunAll executes the given checks, sequentially by default, and never stops
// early: a failed check is reported and the run moves on. With WithParallel
// the checks run concurrently behind a semaphore.
func (o *Orchestrator) RunAll(ctx context.Context, checkTypes []string) []Outcome {
	outcomes := make([]Outcome, len(checkTypes))

	if o.parallel > 1 {
		sem := make(chan struct{}, o.parallel)
		done := make(chan int)
		for i, ct := range checkTypes {
			go func(i int, ct string) {
				sem <- struct{}{}
				defer func() { <-sem }()
				outcomes[i] = o.runOne(ctx, ct)
				done <- i
			}(i, ct)
		}
		for range checkTypes {
			<-done
		}
		return outcomes
	}

	for i, ct := range checkTypes {
		outcomes[i] = o.runOne(ctx, ct)
	}
	return outcomes
}

func (o *Orchestrator) runOne(ctx context.Context, checkType string) Outcome {
	start := time.Now()
	result, err := o.RunCheck(ctx, checkType)

	out := Outcome{Check: checkType, Result: result, Err: err}
	o.record(ctx, checkType, result, err, time.Since(start))
	return out
}

// record logs the outcome and persists it to history when configured.
func (o *Orchestrator) record(ctx context.Context, checkType string, result *Result, err error, elapsed time.Duration) {
	rec := RunRecord{
		Check:      checkType,
		DurationMs: int(elapsed.Milliseconds()),
	}

	if err != nil {
		rec.RunID = uuid.NewString()
		rec.Status = string(KindUnavailable)
		var ce *CheckError
		if errors.As(err, &ce) {
			rec.Status = string(ce.Kind)
			rec.Diagnostic = ce.Diagnostic
		}
		o.log.Error("check failed", "check", checkType, "status", rec.Status, "error", err)
	} else {
		rec.RunID = result.RunID
		rec.Status = string(result.Status)
		rec.ExitCode = result.ExitCode
		rec.Diagnostic = result.Diagnostic
		rec.Categories = len(result.Categories)
		o.log.Info("check completed",
			"check", checkType,
			"status", result.Status,
			"categories", len(result.Categories),
			"duration_ms", rec.DurationMs,
		)
	}

	if o.history != nil {
		if werr := o.history.WriteRun(ctx, rec); werr != nil {
			o.log.Error("failed to write run history", "check", checkType, "error", werr)
		}
	}
}

// diagnosticTail combines stderr and stdout, preferring stderr, and keeps
// only the tail within maxDiagnosticLen.
func diagnosticTail(raw *wlst.RawResult) string {
	text := strings.TrimSpace(raw.Stderr)
	if text == "" {
		text = strings.TrimSpace(raw.Stdout)
	}
	if len(text) > maxDiagnosticLen {
		text = "…(truncated)\n" + text[len(text)-maxDiagnosticLen:]
	}
	return text
}
