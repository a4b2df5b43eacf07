package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sunishkjoseph/mwhealth/internal/config"
	"github.com/sunishkjoseph/mwhealth/internal/normalize"
	"github.com/sunishkjoseph/mwhealth/internal/orchestrator"
	"github.com/sunishkjoseph/mwhealth/internal/schedule"
	"github.com/sunishkjoseph/mwhealth/internal/wlst"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the configured checks on a cron schedule",
	Long: `watch runs the configured checks repeatedly on the cron schedule from the
config file (default */5 * * * *, evaluated in UTC), writing a combined
report after each pass. Stop with Ctrl-C.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		html, _ := cmd.Flags().GetBool("html")

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

		// One counter set for the whole watch session, so synthetic error
		// keys stay unique across passes.
		o := orchestrator.New(cfg, &wlst.ExecInvoker{}, normalize.NewCounters(),
			orchestrator.WithHistory(d))

		log := slog.Default()
		runner, err := schedule.NewRunner(cfg.Schedule, log, func(ctx context.Context) {
			paths, err := runAndReport(ctx, o, cfg, html)
			if err != nil {
				log.Error("scheduled run failed", "error", err)
				return
			}
			for _, p := range paths {
				log.Info("report written", "path", p)
			}
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := runner.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	addConnectionFlags(watchCmd)
	watchCmd.Flags().Bool("html", false, "also write an HTML rendering each pass")
}
