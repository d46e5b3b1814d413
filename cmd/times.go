package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/haircut-mcp/internal/config"
	"github.com/teemow/haircut-mcp/internal/logging"
	"github.com/teemow/haircut-mcp/internal/server"
)

func newTimesCmd() *cobra.Command {
	var (
		asJSON    bool
		debugMode bool
		envFile   string
	)

	cmd := &cobra.Command{
		Use:   "times",
		Short: "Print the currently available appointment times",
		Long: `Fetch the configured availability window from BokaDirekt once and
print the same summary the get-haircut-times tool returns. With --json the
structured report is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			logger := logging.Setup(cmd.ErrOrStderr(), debugMode)

			cfg, err := config.Load(envFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			return runTimes(ctx, cmd.OutOrStdout(), newReporter(cfg, logger), asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the structured report as JSON")
	cmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "Dotenv file with BOKADIREKT_* settings (ignored if missing)")

	return cmd
}

func runTimes(ctx context.Context, w io.Writer, reporter server.AvailabilityReporter, asJSON bool) error {
	result, err := reporter.GetAvailableTimes(ctx)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(result.Report)
	}

	_, err = fmt.Fprintln(w, result.Text)
	return err
}
