package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arbor/paesdiag/internal/diagnostic"
	"github.com/arbor/paesdiag/internal/mst"
	"github.com/arbor/paesdiag/internal/report"
)

// responsesFile is the input of the score command.
type responsesFile struct {
	Route     string              `json:"route"`
	Responses []mst.ResponseInput `json:"responses"`
}

var scoreCmd = &cobra.Command{
	Use:   "score <responses.json>",
	Short: "Score a finished two-stage diagnostic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in responsesFile
		if err := readJSON(args[0], &in); err != nil {
			return err
		}
		responses, err := mst.ResolveResponses(in.Responses)
		if err != nil {
			return err
		}
		route, err := mst.ParseRoute(in.Route)
		if err != nil {
			route = ""
		}
		c := diagnostic.Complete(route, responses)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(c)
		}
		if c.Results == nil {
			report.NeedsSupport(os.Stdout, c)
			return nil
		}
		report.Results(os.Stdout, *c.Results)
		return nil
	},
}

func init() {
	scoreCmd.Flags().Bool("json", false, "Print the completion as JSON")
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func writeJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
