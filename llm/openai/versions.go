package openai

import "strings"

type versionFlavor int

const (
	flavorCompletions versionFlavor = iota
	flavorResponses
	flavorAzure
	flavorAzureResponses
)

type apiVersion struct {
	flavor       versionFlavor
	azureVersion string
}

func (v apiVersion) azure() bool {
	return v.flavor == flavorAzure || v.flavor == flavorAzureResponses
}

func (v apiVersion) responses() bool {
	return v.flavor == flavorResponses || v.flavor == flavorAzureResponses
}

func (v apiVersion) toResponses() apiVersion {
	switch v.flavor {
	case flavorAzure:
		v.flavor = flavorAzureResponses
	case flavorCompletions:
		v.flavor = flavorResponses
	}
	return v
}

// parseVersion resolves an API version string:
//
//	"" | "openai" | "openai_completions"   -> Chat Completions API
//	"openai_responses" | "responses"       -> Responses API
//	"azure[:ver]" | "azure_completions[:ver]" -> Azure Chat Completions
//	"azure_responses[:ver]"                -> Azure Responses
//
// Anything else falls back to the Chat Completions API.
func parseVersion(s string) apiVersion {
	lower := strings.ToLower(strings.TrimSpace(s))
	switch {
	case lower == "openai_responses" || lower == "responses":
		return apiVersion{flavor: flavorResponses}
	case strings.HasPrefix(lower, "azure_responses"):
		return apiVersion{flavor: flavorAzureResponses, azureVersion: azureVersionOf(lower, "azure_responses")}
	case strings.HasPrefix(lower, "azure"):
		prefix := "azure"
		if strings.HasPrefix(lower, "azure_completions") {
			prefix = "azure_completions"
		}
		return apiVersion{flavor: flavorAzure, azureVersion: azureVersionOf(lower, prefix)}
	default:
		return apiVersion{flavor: flavorCompletions}
	}
}

func azureVersionOf(lower, prefix string) string {
	if rest, ok := strings.CutPrefix(lower, prefix+":"); ok {
		if trimmed := strings.TrimSpace(rest); trimmed != "" {
			return trimmed
		}
	}
	return DefaultAzureVersion
}
