package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sunishkjoseph/mwhealth/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate and inspect the configuration",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		errs := config.Validate(cfg)
		if len(errs) == 0 {
			cmd.Println("Configuration is valid.")
			return nil
		}

		cmd.Println("Validation errors:")
		for _, e := range errs {
			cmd.Printf("  - %s\n", e)
		}
		cmd.SilenceUsage = true
		return fmt.Errorf("config has %d validation error(s)", len(errs))
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved configuration with defaults merged",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		// Never echo credentials.
		view := map[string]any{
			"admin_url":          cfg.AdminURL,
			"username":           cfg.Username,
			"password":           redact(cfg.Password),
			"wlst_path":          cfg.WLSTPath,
			"wlst_script":        cfg.WLSTScript,
			"wlst_sample_output": cfg.SampleOutput,
			"timeout":            cfg.Timeout.String(),
			"continue_on_error":  cfg.ContinueOnError,
			"checks":             cfg.Checks,
			"history_path":       cfg.HistoryPath,
			"report_dir":         cfg.ReportDir,
			"schedule":           cfg.Schedule,
		}

		data, err := yaml.Marshal(view)
		if err != nil {
			return fmt.Errorf("marshalling config: %w", err)
		}
		cmd.Print(string(data))
		return nil
	},
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "********"
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)
}
