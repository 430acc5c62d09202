package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arbor/paesdiag/internal/atomgraph"
	"github.com/arbor/paesdiag/internal/curriculum"
)

var atomsCmd = &cobra.Command{
	Use:   "atoms",
	Short: "Browse the atom graph",
}

var atomsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List atoms in prerequisite order (optionally filtered by axis)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		src, closeSrc, err := curriculumSource(cmd.Context(), cmd, cfg, logger)
		if err != nil {
			return err
		}
		defer closeSrc()

		atoms, err := src.Atoms(cmd.Context())
		if err != nil {
			return err
		}
		g := atomgraph.New(atoms)

		list := g.TopologicalOrder()
		if axis, _ := cmd.Flags().GetString("axis"); axis != "" {
			a := curriculum.ParseAxis(axis)
			if !a.Known() {
				return fmt.Errorf("unknown axis %q", axis)
			}
			list = g.ByAxis(a)
			if len(list) == 0 {
				return fmt.Errorf("no atoms found for axis %q", a)
			}
		}

		// Header.
		fmt.Printf("%-28s  %-44s  %-5s  %s\n", "ID", "Title", "Axis", "Prerequisites")
		fmt.Println(strings.Repeat("─", 110))

		for _, a := range list {
			title := a.Title
			if len([]rune(title)) > 44 {
				title = string([]rune(title)[:41]) + "..."
			}
			fmt.Printf("%-28s  %-44s  %-5s  %s\n",
				a.ID, title, a.Axis, strings.Join(g.Prerequisites(a.ID), ", "))
		}

		fmt.Printf("\n%d atoms\n", len(list))
		if err := g.Validate(); err != nil {
			logger.Warn("atom graph has problems", "error", err)
		}
		return nil
	},
}

func init() {
	atomsListCmd.Flags().String("axis", "", "Filter by axis (ALG, NUM, GEO, PROB)")
	atomsListCmd.Flags().String("curriculum", "", "Read atoms from a curriculum JSON file instead of the database")

	atomsCmd.AddCommand(atomsListCmd)
}
