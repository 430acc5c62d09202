package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/arbor/paesdiag/internal/diagnostic"
	"github.com/arbor/paesdiag/internal/mastery"
	"github.com/arbor/paesdiag/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [atom-results.json]",
	Short: "Plan learning routes from atom results (or from scratch)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		var obs []mastery.Observation
		if len(args) == 1 {
			if err := readJSON(args[0], &obs); err != nil {
				return err
			}
		}
		score, _ := cmd.Flags().GetInt("score")

		src, closeSrc, err := curriculumSource(cmd.Context(), cmd, cfg, logger)
		if err != nil {
			return err
		}
		defer closeSrc()

		opts := cfg.AnalyzerOptions()
		if cmd.Flags().Changed("combined") {
			opts.CombinedRoute, _ = cmd.Flags().GetBool("combined")
		}
		a := diagnostic.NewAnalyzer(src, opts, logger, nil)
		analysis, err := a.AnalyzeLearningPotential(cmd.Context(), obs, diagnostic.AnalyzeOptions{CurrentPaesScore: score})
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(analysis)
		}
		report.LearningRoutes(os.Stdout, diagnostic.BuildReport(analysis, score, 0))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().String("curriculum", "", "Read reference data from a curriculum JSON file instead of the database")
	analyzeCmd.Flags().Int("score", 0, "Current PAES score used to anchor point projections")
	analyzeCmd.Flags().Bool("combined", false, "Add a cross-axis route")
	analyzeCmd.Flags().Bool("json", false, "Print the full analysis as JSON")
}
