package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Sentinel errors for the two fatal configuration failure modes. Callers
// match them with errors.Is; both abort the run before any check executes.
var (
	ErrNotFound = errors.New("config file not found")
	ErrParse    = errors.New("config file malformed")
)

// DefaultTimeout bounds a single legacy-runtime invocation when neither the
// file nor the caller sets one.
const DefaultTimeout = 2 * time.Minute

// Defaults returns the built-in configuration. Every field is populated so
// that the resolved Config is never sparse.
func Defaults() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		WLSTPath:    "wlst.sh",
		WLSTScript:  "wlst_health_checks.py",
		Timeout:     DefaultTimeout,
		Checks:      []string{"all"},
		HistoryPath: filepath.Join(home, ".mwhealth", "mwhealth.db"),
		ReportDir:   filepath.Join(home, ".mwhealth", "reports"),
		Schedule:    "*/5 * * * *",
	}
}

// Resolve merges defaults, an optional YAML file, and caller overrides into
// one Config, in rising precedence. An empty path skips the file layer; a
// non-empty path that does not exist is an error (wrapping ErrNotFound), as
// is a file that fails to parse (wrapping ErrParse). The returned Config is
// complete and must be treated as read-only.
func Resolve(path string, ov Overrides) (Config, error) {
	cfg := Defaults()

	if path != "" {
		fc, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		applyFile(&cfg, fc)
	}

	applyOverrides(&cfg, ov)
	return cfg, nil
}

func loadFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrParse, path, err)
	}
	return &fc, nil
}

func applyFile(cfg *Config, fc *fileConfig) {
	setString(&cfg.AdminURL, fc.AdminURL)
	setString(&cfg.Username, fc.Username)
	setString(&cfg.Password, fc.Password)
	setString(&cfg.WLSTPath, fc.WLSTPath)
	setString(&cfg.WLSTScript, fc.WLSTScript)
	setString(&cfg.SampleOutput, fc.SampleOutput)
	setString(&cfg.HistoryPath, fc.HistoryPath)
	setString(&cfg.ReportDir, fc.ReportDir)
	setString(&cfg.Schedule, fc.Schedule)
	if fc.ContinueOnError != nil {
		cfg.ContinueOnError = *fc.ContinueOnError
	}
	if len(fc.Checks) > 0 {
		cfg.Checks = append([]string(nil), fc.Checks...)
	}
	if fc.Timeout != nil {
		if d, err := time.ParseDuration(*fc.Timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
}

func applyOverrides(cfg *Config, ov Overrides) {
	setString(&cfg.AdminURL, ov.AdminURL)
	setString(&cfg.Username, ov.Username)
	setString(&cfg.Password, ov.Password)
	setString(&cfg.WLSTPath, ov.WLSTPath)
	setString(&cfg.WLSTScript, ov.WLSTScript)
	setString(&cfg.SampleOutput, ov.SampleOutput)
	setString(&cfg.HistoryPath, ov.HistoryPath)
	setString(&cfg.ReportDir, ov.ReportDir)
	setString(&cfg.Schedule, ov.Schedule)
	if ov.ContinueOnError != nil {
		cfg.ContinueOnError = *ov.ContinueOnError
	}
	if len(ov.Checks) > 0 {
		cfg.Checks = append([]string(nil), ov.Checks...)
	}
	if ov.Timeout != nil && *ov.Timeout > 0 {
		cfg.Timeout = *ov.Timeout
	}
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
