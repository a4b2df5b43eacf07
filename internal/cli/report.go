package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sunishkjoseph/mwhealth/internal/config"
	"github.com/sunishkjoseph/mwhealth/internal/normalize"
	"github.com/sunishkjoseph/mwhealth/internal/orchestrator"
	"github.com/sunishkjoseph/mwhealth/internal/report"
	"github.com/sunishkjoseph/mwhealth/internal/wlst"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run the configured checks and write a combined report",
	RunE: func(cmd *cobra.Command, args []string) error {
		html, _ := cmd.Flags().GetBool("html")
		parallel, _ := cmd.Flags().GetInt("parallel")

		cfg, err := resolveConfig(cmd)
		if err != nil {
			return err
		}
		if errs := config.Validate(cfg); len(errs) > 0 {
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "config: %s\n", e)
			}
			cmd.SilenceUsage = true
			return fmt.Errorf("config has %d validation error(s)", len(errs))
		}

		d, cleanup, err := openHistory(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer cleanup()

		opts := []orchestrator.Option{orchestrator.WithHistory(d)}
		if parallel > 1 {
			opts = append(opts, orchestrator.WithParallel(parallel))
		}
		o := orchestrator.New(cfg, &wlst.ExecInvoker{}, normalize.NewCounters(), opts...)

		paths, err := runAndReport(cmd.Context(), o, cfg, html)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", p)
		}
		return nil
	},
}

// runAndReport executes the configured checks and writes the combined JSON
// report, plus HTML when asked. Check failures do not abort the report; they
// appear in it.
func runAndReport(ctx context.Context, o *orchestrator.Orchestrator, cfg config.Config, html bool) ([]string, error) {
	outcomes := o.RunAll(ctx, resolveCheckTypes(nil, false, cfg))
	doc := report.Build(outcomes, time.Now())

	w, err := report.NewWriter(cfg.ReportDir)
	if err != nil {
		return nil, err
	}

	jsonPath, err := w.WriteJSON(doc)
	if err != nil {
		return nil, err
	}
	paths := []string{jsonPath}

	if html {
		htmlPath, err := w.WriteHTML(doc)
		if err != nil {
			return nil, err
		}
		paths = append(paths, htmlPath)
	}
	return paths, nil
}

func init() {
	addConnectionFlags(reportCmd)
	reportCmd.Flags().Bool("html", false, "also write an HTML rendering")
	reportCmd.Flags().Int("parallel", 1, "max checks to run concurrently")
}
