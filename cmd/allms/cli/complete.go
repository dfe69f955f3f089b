package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/neferdata/allms-go/config"
	"github.com/neferdata/allms-go/llm"
	"github.com/neferdata/allms-go/logger"

	// Register provider model catalogs.
	_ "github.com/neferdata/allms-go/llm/anthropic"
	_ "github.com/neferdata/allms-go/llm/deepseek"
	_ "github.com/neferdata/allms-go/llm/google"
	_ "github.com/neferdata/allms-go/llm/mistral"
	_ "github.com/neferdata/allms-go/llm/openai"
	_ "github.com/neferdata/allms-go/llm/perplexity"
	_ "github.com/neferdata/allms-go/llm/xai"
)

var (
	flagProvider    string
	flagModel       string
	flagSchemaFile  string
	flagMaxTokens   int
	flagTemperature float64
	flagFunctions   bool
	flagVersion     string
)

var completeCmd = &cobra.Command{
	Use:   "complete [instructions]",
	Short: "Run one structured completion and print the JSON answer",
	Args:  cobra.ExactArgs(1),
	RunE:  runComplete,
}

func init() {
	completeCmd.Flags().StringVar(&flagProvider, "provider", "openai", "provider slug")
	completeCmd.Flags().StringVar(&flagModel, "model", "gpt-4o-mini", "model name")
	completeCmd.Flags().StringVar(&flagSchemaFile, "schema", "", "path to a JSON schema file for the answer (required)")
	completeCmd.Flags().IntVar(&flagMaxTokens, "max-tokens", 0, "override the completion token ceiling")
	completeCmd.Flags().Float64Var(&flagTemperature, "temperature", -1, "relative temperature 0-100")
	completeCmd.Flags().BoolVar(&flagFunctions, "function-calling", false, "force the function-calling compilation mode")
	completeCmd.Flags().StringVar(&flagVersion, "api-version", "", "provider API version, e.g. responses or azure")
	_ = completeCmd.MarkFlagRequired("schema")
}

func runComplete(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	log, err := logger.InitWithOptions(cfg.LogFile, false)
	if err != nil {
		return err
	}

	model, err := llm.ResolveModel(flagProvider, flagModel)
	if err != nil {
		return err
	}

	apiKey := cfg.APIKeyFor(flagProvider)
	if apiKey == "" {
		apiKey, err = promptForKey(flagProvider)
		if err != nil {
			return err
		}
	}

	schema, err := os.ReadFile(flagSchemaFile)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	completions := llm.NewCompletions(model, apiKey, log)
	if flagDebug || cfg.Debug {
		completions.Debug()
	}
	if flagMaxTokens > 0 {
		completions.MaxTokens(flagMaxTokens)
	}
	if flagTemperature >= 0 {
		completions.Temperature(flagTemperature)
	}
	if flagFunctions {
		completions.FunctionCalling(true)
	}
	if flagVersion != "" {
		completions.Version(flagVersion)
	}

	answer, err := llm.GetJSONAnswer(cmd.Context(), completions, args[0], string(schema))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.TrimSpace(answer))
	return nil
}

// promptForKey reads the API key from the terminal without echo. A
// non-interactive stdin is a configuration error rather than a prompt.
func promptForKey(provider string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no API key configured for provider %q", provider)
	}
	fmt.Fprintf(os.Stderr, "%s API key: ", provider)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read API key: %w", err)
	}
	key := strings.TrimSpace(string(raw))
	if key == "" {
		return "", fmt.Errorf("no API key provided for provider %q", provider)
	}
	return key, nil
}
