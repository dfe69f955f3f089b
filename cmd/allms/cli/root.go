// Package cli wires the allms command tree.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	flagConfig string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "allms",
	Short: "Structured completions against LLM providers",
	Long: `allms compiles an instruction and a JSON schema into a provider
request, runs it once, and prints the model's JSON answer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "log request and response payloads")
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(modelsCmd)
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}
