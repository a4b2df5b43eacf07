package config

import "time"

// Config is the fully-resolved, immutable settings snapshot used by the
// orchestrator. Every field has a defined default, so readers never have to
// probe for missing values. Build one through Resolve; never mutate it
// afterwards.
type Config struct {
	AdminURL        string
	Username        string
	Password        string
	WLSTPath        string
	WLSTScript      string
	SampleOutput    string
	Timeout         time.Duration
	ContinueOnError bool
	Checks          []string
	HistoryPath     string
	ReportDir       string
	Schedule        string
}

// fileConfig mirrors the YAML config file (sample_config.yaml style).
// Pointer fields distinguish "absent" from zero values so the merge can
// keep defaults for keys the file does not set.
type fileConfig struct {
	AdminURL        *string  `yaml:"admin_url"`
	Username        *string  `yaml:"username"`
	Password        *string  `yaml:"password"`
	WLSTPath        *string  `yaml:"wlst_path"`
	WLSTScript      *string  `yaml:"wlst_script"`
	SampleOutput    *string  `yaml:"wlst_sample_output"`
	Timeout         *string  `yaml:"timeout"`
	ContinueOnError *bool    `yaml:"continue_on_error"`
	Checks          []string `yaml:"checks"`
	HistoryPath     *string  `yaml:"history_path"`
	ReportDir       *string  `yaml:"report_dir"`
	Schedule        *string  `yaml:"schedule"`
}

// Overrides carries caller-supplied settings (typically CLI flags) that win
// over both the config file and the built-in defaults. Nil means "not set".
type Overrides struct {
	AdminURL        *string
	Username        *string
	Password        *string
	WLSTPath        *string
	WLSTScript      *string
	SampleOutput    *string
	Timeout         *time.Duration
	ContinueOnError *bool
	Checks          []string
	HistoryPath     *string
	ReportDir       *string
	Schedule        *string
}
