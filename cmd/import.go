package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arbor/paesdiag/internal/curriculum"
)

var importCmd = &cobra.Command{
	Use:   "import <curriculum.json>",
	Short: "Load atoms, prerequisites and questions into the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		b, err := curriculum.LoadFile(args[0])
		if err != nil {
			return err
		}
		st, err := openStore(cmd.Context(), cmd, cfg, logger, nil)
		if err != nil {
			return err
		}
		defer st.Close()

		stats, err := st.ImportBundle(cmd.Context(), b)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d atoms, %d prerequisites, %d questions, %d question-atom links\n",
			stats.Atoms, stats.Prerequisites, stats.Questions, stats.Links)
		return nil
	},
}
