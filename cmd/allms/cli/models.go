package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neferdata/allms-go/llm"
)

var modelsCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the registered provider slugs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		for _, p := range llm.Providers() {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}
