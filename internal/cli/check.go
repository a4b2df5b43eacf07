package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sunishkjoseph/mwhealth/internal/config"
	"github.com/sunishkjoseph/mwhealth/internal/db"
	"github.com/sunishkjoseph/mwhealth/internal/normalize"
	"github.com/sunishkjoseph/mwhealth/internal/orchestrator"
	"github.com/sunishkjoseph/mwhealth/internal/report"
	"github.com/sunishkjoseph/mwhealth/internal/wlst"
)

// fullChecks is the canonical ordering when "all" or --full expands to
// individual runs, one subprocess per check.
var fullChecks = []string{
	"cluster",
	"managed_servers",
	"jms",
	"threads",
	"datasource",
	"deployments",
	"composites",
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run middleware health checks",
}

var checkRunCmd = &cobra.Command{
	Use:   "run [checks...]",
	Short: "Run one or more health checks against the admin server",
	RunE: func(cmd *cobra.Command, args []string) error {
		full, _ := cmd.Flags().GetBool("full")
		parallel, _ := cmd.Flags().GetInt("parallel")
		format, _ := cmd.Flags().GetString("format")
		noHistory, _ := cmd.Flags().GetBool("no-history")
		dumpDir, _ := cmd.Flags().GetString("dump-dir")

		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}

		checkTypes := resolveCheckTypes(args, full, cfg)
		if errs := config.Validate(cfg); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "config: %s\n", e)
			}
			cmd.SilenceUsage = true
			return fmt.Errorf("config has %d validation error(s)", len(errs))
		}

		opts := []orchestrator.Option{}
		if parallel > 1 {
			opts = append(opts, orchestrator.WithParallel(parallel))
		}
		if !noHistory {
			d, cleanup, err := openHistory(cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer cleanup()
			opts = append(opts, orchestrator.WithHistory(d))
		}

		o := orchestrator.New(cfg, &wlst.ExecInvoker{DumpDir: dumpDir}, normalize.NewCounters(), opts...)
		outcomes := o.RunAll(cmd.Context(), checkTypes)

		if format == "json" {
			doc := report.Build(outcomes, time.Now())
			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("encode outcomes: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
		} else {
			printOutcomes(cmd, outcomes)
		}

		failed := 0
		for _, out := range outcomes {
			if out.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			cmd.SilenceUsage = true
			return fmt.Errorf("%d of %d checks failed", failed, len(outcomes))
		}
		return nil
	},
}

func printOutcomes(cmd *cobra.Command, outcomes []orchestrator.Outcome) {
	w := cmd.OutOrStdout()
	for _, out := range outcomes {
		if out.Err != nil {
			fmt.Fprintf(w, "[FAIL] %s — %v\n", out.Check, out.Err)
			continue
		}
		r := out.Result
		label := "OK"
		if r.Status == orchestrator.StatusPartial {
			label = "PARTIAL"
		}
		total := 0
		for _, coll := range r.Categories {
			total += len(coll)
		}
		fmt.Fprintf(w, "[%s] %s — %d categories, %d resources (%dms)\n",
			label, out.Check, len(r.Categories), total, r.DurationMs)
	}
}

// resolveCheckTypes picks the checks to run: explicit args win, then --full,
// then the configured list. "all" expands to one subprocess per check, the
// way the legacy wrapper ran its full suite.
func resolveCheckTypes(args []string, full bool, cfg config.Config) []string {
	selected := args
	if len(selected) == 0 {
		if full {
			return fullChecks
		}
		selected = cfg.Checks
	}

	var out []string
	for _, c := range selected {
		if c == "all" {
			out = append(out, fullChecks...)
			continue
		}
		out = append(out, c)
	}
	return out
}

// resolveConfig merges defaults, the optional config file, and command flags.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	ov := config.Overrides{}
	if cmd.Flags().Changed("admin-url") {
		v, _ := cmd.Flags().GetString("admin-url")
		ov.AdminURL = &v
	}
	if cmd.Flags().Changed("username") {
		v, _ := cmd.Flags().GetString("username")
		ov.Username = &v
	}
	if cmd.Flags().Changed("password") {
		v, _ := cmd.Flags().GetString("password")
		ov.Password = &v
	}
	if cmd.Flags().Changed("fixture") {
		v, _ := cmd.Flags().GetString("fixture")
		ov.SampleOutput = &v
	}
	if cmd.Flags().Changed("timeout") {
		v, _ := cmd.Flags().GetDuration("timeout")
		ov.Timeout = &v
	}
	if cmd.Flags().Changed("continue-on-error") {
		v, _ := cmd.Flags().GetBool("continue-on-error")
		ov.ContinueOnError = &v
	}

	cfg, err := config.Resolve(configFile, ov)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// addConnectionFlags registers the flags shared by every command that talks
// to the legacy runtime.
func addConnectionFlags(cmd *cobra.Command) {
	cmd.Flags().String("admin-url", "", "admin server URL (t3://host:port)")
	cmd.Flags().String("username", "", "admin username")
	cmd.Flags().String("password", "", "admin password")
	cmd.Flags().String("fixture", "", "sample payload file, exported as WLST_SAMPLE_OUTPUT")
	cmd.Flags().Duration("timeout", 0, "per-check subprocess timeout")
	cmd.Flags().Bool("continue-on-error", false, "tolerate nonzero exits when output is still parseable")
}

// openHistory opens and migrates the run-history database.
func openHistory(path string) (*db.DB, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create history directory: %w", err)
	}
	d, err := db.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if err := d.Migrate(); err != nil {
		d.Close()
		return nil, nil, err
	}
	return d, func() { d.Close() }, nil
}

func init() {
	addConnectionFlags(checkRunCmd)
	checkRunCmd.Flags().Bool("full", false, "run the full check suite")
	checkRunCmd.Flags().Int("parallel", 1, "max checks to run concurrently")
	checkRunCmd.Flags().String("format", "text", "output format: text or json")
	checkRunCmd.Flags().Bool("no-history", false, "skip writing run history")
	checkRunCmd.Flags().String("dump-dir", "", "directory for raw subprocess transcripts")

	checkCmd.AddCommand(checkRunCmd)
}
