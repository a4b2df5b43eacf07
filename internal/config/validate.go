package config

import "fmt"

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// RecognizedChecks is the set of check types the legacy runtime understands.
var RecognizedChecks = map[string]bool{
	"cluster":         true,
	"managed_servers": true,
	"jms":             true,
	"threads":         true,
	"datasource":      true,
	"deployments":     true,
	"composites":      true,
	"all":             true,
}

// Validate checks a resolved Config for semantic errors. It returns a slice
// of all issues found (empty if valid).
func Validate(cfg Config) []ValidationError {
	var errs []ValidationError

	for i, name := range cfg.Checks {
		if !RecognizedChecks[name] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("checks[%d]", i),
				Message: fmt.Sprintf("unrecognized check %q", name),
			})
		}
	}

	// Without a fixture, the legacy runtime needs real connection details.
	if cfg.SampleOutput == "" {
		if cfg.AdminURL == "" {
			errs = append(errs, ValidationError{Field: "admin_url", Message: "is required when wlst_sample_output is not set"})
		}
		if cfg.Username == "" {
			errs = append(errs, ValidationError{Field: "username", Message: "is required when wlst_sample_output is not set"})
		}
		if cfg.Password == "" {
			errs = append(errs, ValidationError{Field: "password", Message: "is required when wlst_sample_output is not set"})
		}
	}

	if cfg.WLSTPath == "" {
		errs = append(errs, ValidationError{Field: "wlst_path", Message: "is required"})
	}
	if cfg.WLSTScript == "" {
		errs = append(errs, ValidationError{Field: "wlst_script", Message: "is required"})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, ValidationError{Field: "timeout", Message: "must be positive"})
	}

	return errs
}
