// Package assistants runs structured completions through OpenAI's
// thread-based Assistants API, including file search over uploaded
// documents.
package assistants

import (
	"net/http"
	"os"
	"strings"
)

const (
	envAPIURL     = "OPENAI_API_URL"
	defaultAPIURL = "https://api.openai.com"

	// azureAPIVersion is the api-version query value for Azure assistants.
	azureAPIVersion = "2024-05-01-preview"
)

// Version selects the Assistants API generation and deployment flavor.
type Version int

const (
	// V1 is the original assistants beta.
	V1 Version = iota + 1
	// V2 is the current assistants API with vector store support.
	V2
	// Azure is the Azure OpenAI assistants deployment.
	Azure
)

func (v Version) String() string {
	switch v {
	case V1:
		return "v1"
	case V2:
		return "v2"
	case Azure:
		return "azure"
	default:
		return "unknown"
	}
}

func baseURL() string {
	base := os.Getenv(envAPIURL)
	if base == "" {
		base = defaultAPIURL
	}
	return strings.TrimRight(base, "/")
}

// url builds a resource URL for this version. The platform API nests
// resources under /v1; Azure nests them under /openai and pins the
// deployment's api-version through a query parameter.
func (v Version) url(parts ...string) string {
	var sb strings.Builder
	sb.WriteString(baseURL())
	if v == Azure {
		sb.WriteString("/openai")
	} else {
		sb.WriteString("/v1")
	}
	for _, p := range parts {
		sb.WriteString("/")
		sb.WriteString(p)
	}
	if v == Azure {
		sb.WriteString("?api-version=" + azureAPIVersion)
	}
	return sb.String()
}

// headers returns the auth and beta-opt-in headers for this version.
func (v Version) headers(apiKey string) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	switch v {
	case V1:
		h.Set("Authorization", "Bearer "+apiKey)
		h.Set("OpenAI-Beta", "assistants=v1")
	case Azure:
		h.Set("api-key", apiKey)
	default:
		h.Set("Authorization", "Bearer "+apiKey)
		h.Set("OpenAI-Beta", "assistants=v2")
	}
	return h
}
