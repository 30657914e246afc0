package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"dailybriefing/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var RunCmd = &cobra.Command{
	Use:   "run",
	Short: "Generate and send one briefing now",
	Long: `Run the full pipeline once: load the prompt template, call the model,
clean the response, render it and send the email. Prints the run result as JSON
and exits non-zero when the run fails.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}

	reg := prometheus.NewRegistry()
	result := services.RunOnce(ctx, cfg, services.NewMetrics(reg), "cli")
	pushMetrics(context.WithoutCancel(ctx), cfg, reg)

	fmt.Fprintln(cmd.OutOrStdout(), result.Body)
	if !result.OK() {
		return fmt.Errorf("briefing run failed with status %d", result.StatusCode)
	}
	return nil
}
