package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/intel-cli/internal/config"
)

var (
	cfg *config.Config
	wl  *config.Wordlists
)

var rootCmd = &cobra.Command{
	Use:   "intel-cli",
	Short: "Evidence-grounded corporate intelligence reports",
	Long:  "Gathers web evidence about a company, extracts leadership changes, competitor mentions and regulatory events, verifies every cited URL and assembles a scored report.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		w, err := config.LoadWordlists(cfg.WordlistsPath)
		if err != nil {
			return fmt.Errorf("load wordlists: %w", err)
		}
		wl = w

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
