package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mergelens/mergelens/internal/rules"
)

var flagRulesRepo string

func init() {
	rulesCmd.Flags().StringVar(&flagRulesRepo, "repo", ".", "Repository directory to read the md.rbot override file from")
}

// rulesCmd prints the effective review rules after merging defaults with
// any md.rbot override file, so operators can check what the model will
// actually be told.
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective review rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		effective := rules.NewEngine(flagRulesRepo).Effective()
		data, err := json.MarshalIndent(effective, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling rules: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(data))
		return nil
	},
}
