package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/intel-cli/internal/export"
	"github.com/sells-group/intel-cli/internal/store"
)

var (
	reportsCompany string
	reportsLimit   int
	reportsOutput  string
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect stored reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		metas, err := st.ListReports(cmd.Context(), store.ReportFilter{
			Company: reportsCompany,
			Limit:   reportsLimit,
		})
		if err != nil {
			return err
		}

		if len(metas) == 0 {
			fmt.Println("no reports stored")
			return nil
		}
		fmt.Printf("%-36s  %-30s  %s\n", "ID", "COMPANY", "GENERATED")
		for _, m := range metas {
			fmt.Printf("%-36s  %-30s  %s\n", m.ID, m.Company, m.GeneratedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Print a stored report as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		report, err := st.GetReport(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	},
}

var reportsExportCmd = &cobra.Command{
	Use:   "export <report-id>",
	Short: "Export a stored report as an xlsx workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		report, err := st.GetReport(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if err := export.WriteXLSX(report, reportsOutput); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", reportsOutput)
		return nil
	},
}

var reportsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete expired reports and their usage records",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(cmd.Context()); err != nil {
			return err
		}

		n, err := st.DeleteExpiredReports(cmd.Context())
		if err != nil {
			return err
		}
		zap.L().Info("pruned expired reports", zap.Int("deleted", n))
		fmt.Printf("deleted %d expired reports\n", n)
		return nil
	},
}

func init() {
	reportsListCmd.Flags().StringVar(&reportsCompany, "company", "", "filter by company name")
	reportsListCmd.Flags().IntVar(&reportsLimit, "limit", 20, "maximum reports to list")
	reportsExportCmd.Flags().StringVarP(&reportsOutput, "output", "o", "report.xlsx", "output path for the workbook")

	reportsCmd.AddCommand(reportsListCmd, reportsShowCmd, reportsExportCmd, reportsPruneCmd)
	rootCmd.AddCommand(reportsCmd)
}
