package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/arbor/paesdiag/internal/curriculum"
	"github.com/arbor/paesdiag/internal/mastery"
	"github.com/arbor/paesdiag/internal/report"
	"github.com/arbor/paesdiag/internal/store"
)

var masteryCmd = &cobra.Command{
	Use:   "mastery <atom-results.json>",
	Short: "Infer full atom mastery from direct results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		var obs []mastery.Observation
		if err := readJSON(args[0], &obs); err != nil {
			return err
		}

		user, _ := cmd.Flags().GetString("user")
		save, _ := cmd.Flags().GetBool("save")
		if save && user == "" {
			return fmt.Errorf("--save requires --user")
		}

		var (
			src curriculum.Source
			st  *store.Store
		)
		closeSrc := func() {}
		if save {
			if st, err = openStore(cmd.Context(), cmd, cfg, logger, nil); err != nil {
				return err
			}
			defer st.Close()
		}
		if path, _ := cmd.Flags().GetString("curriculum"); path != "" || st == nil {
			if src, closeSrc, err = curriculumSource(cmd.Context(), cmd, cfg, logger); err != nil {
				return err
			}
		} else {
			src = st
		}
		defer closeSrc()

		results, err := mastery.NewService(src, logger).ComputeFullMasteryWithTransitivity(cmd.Context(), obs)
		if err != nil {
			return err
		}

		if st != nil {
			n, err := st.SaveMastery(cmd.Context(), mastery.Records(user, results, time.Now().UTC()))
			if err != nil {
				return err
			}
			logger.Info("mastery saved", "user", user, "new_records", n)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(results)
		}
		report.Mastery(os.Stdout, results)
		return nil
	},
}

func init() {
	masteryCmd.Flags().String("curriculum", "", "Read atoms from a curriculum JSON file instead of the database")
	masteryCmd.Flags().String("user", "", "Student id the results belong to")
	masteryCmd.Flags().Bool("save", false, "Persist the results for --user")
	masteryCmd.Flags().Bool("json", false, "Print the results as JSON")
}
