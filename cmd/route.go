package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arbor/paesdiag/internal/mst"
)

var routeCmd = &cobra.Command{
	Use:   "route <stage1-correct>",
	Short: "Show the stage-2 route for a stage-1 correct count",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 || n > mst.QuestionsPerStage {
			return fmt.Errorf("stage-1 correct must be between 0 and %d", mst.QuestionsPerStage)
		}
		r := mst.GetRoute(n)
		fmt.Printf("Route %s: %s (factor %.2f)\n\n", r, r.DisplayName(), r.Factor())

		fmt.Printf("%-28s  %-26s  %-18s  %s\n", "Question", "Axis", "Skill", "Difficulty")
		fmt.Println(strings.Repeat("─", 88))
		for _, q := range mst.Stage2Questions(r) {
			fmt.Printf("%-28s  %-26s  %-18s  %.2f\n",
				q.ID(), q.Axis.DisplayName(), q.Skill.DisplayName(), q.Difficulty)
		}
		return nil
	},
}
