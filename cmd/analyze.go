package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/intel-cli/internal/export"
	"github.com/sells-group/intel-cli/internal/pipeline"
)

var (
	analyzeCompetitors []string
	analyzeForce       bool
	analyzeOutput      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <company>",
	Short: "Run a full intelligence analysis for one company",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		report, err := env.pipe.Analyze(ctx, pipeline.Request{
			Company:     args[0],
			Competitors: analyzeCompetitors,
			Force:       analyzeForce,
		})
		if err != nil {
			return err
		}

		if analyzeOutput != "" {
			if err := export.WriteXLSX(report, analyzeOutput); err != nil {
				return err
			}
			zap.L().Info("report exported",
				zap.String("report_id", report.ID),
				zap.String("path", analyzeOutput),
			)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

func init() {
	analyzeCmd.Flags().StringSliceVar(&analyzeCompetitors, "competitors", nil, "competitor names to track (repeatable or comma-separated)")
	analyzeCmd.Flags().BoolVar(&analyzeForce, "force", false, "ignore the report cache and rebuild")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "also write the report as an xlsx workbook at this path")
	rootCmd.AddCommand(analyzeCmd)
}
