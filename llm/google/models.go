// Package google implements Gemini models for Google AI Studio and
// Vertex AI.
package google

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/neferdata/allms-go/llm"
)

const (
	providerSlug = "google"

	// VersionStudio selects the Google AI Studio endpoint (key auth).
	VersionStudio = "google-studio"
	// VersionVertex selects the Vertex AI endpoint (bearer auth, SSE).
	VersionVertex = "google-vertex"

	envStudioAPIURL     = "GOOGLE_GEMINI_API_URL"
	defaultStudioAPIURL = "https://generativelanguage.googleapis.com/v1beta/models"

	envProjectID = "GOOGLE_PROJECT_ID"
	envRegion    = "GOOGLE_REGION"
	defaultRegion = "us-central1"
)

// Model is one Gemini model identity with its defaults and limits.
type Model struct {
	name      string
	maxTokens int
	limit     llm.RateLimit
	tools     []llm.ToolKind
}

var (
	Gemini15Flash = &Model{name: "gemini-1.5-flash", maxTokens: 1_048_576,
		limit: llm.RateLimit{TPM: 4_000_000, RPM: 2_000}}
	Gemini15Pro = &Model{name: "gemini-1.5-pro", maxTokens: 2_097_152,
		limit: llm.RateLimit{TPM: 4_000_000, RPM: 1_000}}
	Gemini20Flash = &Model{name: "gemini-2.0-flash", maxTokens: 1_048_576,
		limit: llm.RateLimit{TPM: 4_000_000, RPM: 2_000},
		tools: []llm.ToolKind{llm.ToolKindWebSearch}}
	Gemini25Flash = &Model{name: "gemini-2.5-flash", maxTokens: 1_048_576,
		limit: llm.RateLimit{TPM: 4_000_000, RPM: 2_000},
		tools: []llm.ToolKind{llm.ToolKindWebSearch}}
	Gemini25Pro = &Model{name: "gemini-2.5-pro", maxTokens: 1_048_576,
		limit: llm.RateLimit{TPM: 4_000_000, RPM: 1_000},
		tools: []llm.ToolKind{llm.ToolKindWebSearch}}
)

var catalog = []*Model{Gemini15Flash, Gemini15Pro, Gemini20Flash, Gemini25Flash, Gemini25Pro}

func init() {
	llm.RegisterProvider(providerSlug, func(name string) (llm.Model, bool) {
		m, ok := FromName(name)
		return m, ok
	})
}

// FromName resolves a model by its provider-facing name.
func FromName(name string) (*Model, bool) {
	for _, m := range catalog {
		if m.name == name {
			return m, true
		}
	}
	return nil, false
}

func (m *Model) Name() string     { return m.name }
func (m *Model) Provider() string { return providerSlug }

func vertex(version string) bool {
	return strings.EqualFold(strings.TrimSpace(version), VersionVertex)
}

// Endpoint resolves the request URL. Studio calls generateContent; Vertex
// streams through streamGenerateContent and the engine drains the stream.
func (m *Model) Endpoint(version string) string {
	if vertex(version) {
		region := os.Getenv(envRegion)
		if region == "" {
			region = defaultRegion
		}
		project := os.Getenv(envProjectID)
		return fmt.Sprintf(
			"https://%s-aiplatform.googleapis.com/v1/projects/%s/locations/%s/publishers/google/models/%s:streamGenerateContent?alt=sse",
			region, project, region, m.name)
	}
	base := os.Getenv(envStudioAPIURL)
	if base == "" {
		base = defaultStudioAPIURL
	}
	return strings.TrimRight(base, "/") + "/" + m.name + ":generateContent"
}

// Headers returns bearer auth for Vertex. Studio authenticates with a key
// query parameter instead, added at call time.
func (m *Model) Headers(apiKey, version string) http.Header {
	h := http.Header{}
	if vertex(version) {
		h.Set("Authorization", "Bearer "+apiKey)
	}
	return h
}

func (m *Model) DefaultMaxTokens() int         { return m.maxTokens }
func (m *Model) DefaultTemperature() float64   { return 0 }
func (m *Model) SupportsFunctionCalling() bool { return false }
func (m *Model) DefaultFunctionCalling() bool  { return false }
func (m *Model) Reasoning() bool               { return false }
func (m *Model) SupportedTools() []llm.ToolKind { return m.tools }
func (m *Model) RateLimit() llm.RateLimit      { return m.limit }

// AbsoluteTemperature maps the relative 0-100 scale onto Gemini's 0-2.
func (m *Model) AbsoluteTemperature(relative float64) float64 {
	return llm.MapToRange(0, 2, relative)
}
