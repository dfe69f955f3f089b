package assistants

import "testing"

func TestVersionURL(t *testing.T) {
	tests := []struct {
		name    string
		version Version
		parts   []string
		want    string
	}{
		{
			name:    "v1 assistants",
			version: V1,
			parts:   []string{"assistants"},
			want:    "https://api.openai.com/v1/assistants",
		},
		{
			name:    "v2 nested run",
			version: V2,
			parts:   []string{"threads", "thread_abc", "runs", "run_xyz"},
			want:    "https://api.openai.com/v1/threads/thread_abc/runs/run_xyz",
		},
		{
			name:    "azure base and query",
			version: Azure,
			parts:   []string{"assistants"},
			want:    "https://api.openai.com/openai/assistants?api-version=" + azureAPIVersion,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.version.url(tt.parts...); got != tt.want {
				t.Errorf("url = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVersionURLBaseOverride(t *testing.T) {
	t.Setenv(envAPIURL, "https://example.test/")
	if got, want := V2.url("threads"), "https://example.test/v1/threads"; got != want {
		t.Errorf("url = %q, want %q", got, want)
	}
}

func TestVersionHeaders(t *testing.T) {
	h := V1.headers("sk-test")
	if got := h.Get("OpenAI-Beta"); got != "assistants=v1" {
		t.Errorf("v1 OpenAI-Beta = %q", got)
	}
	if got := h.Get("Authorization"); got != "Bearer sk-test" {
		t.Errorf("v1 Authorization = %q", got)
	}

	h = V2.headers("sk-test")
	if got := h.Get("OpenAI-Beta"); got != "assistants=v2" {
		t.Errorf("v2 OpenAI-Beta = %q", got)
	}

	h = Azure.headers("az-test")
	if got := h.Get("api-key"); got != "az-test" {
		t.Errorf("azure api-key = %q", got)
	}
	if h.Get("Authorization") != "" {
		t.Error("azure must not carry bearer auth")
	}
	if h.Get("OpenAI-Beta") != "" {
		t.Error("azure must not carry the beta opt-in header")
	}
}

func TestVersionString(t *testing.T) {
	if V1.String() != "v1" || V2.String() != "v2" || Azure.String() != "azure" {
		t.Errorf("String() = %q %q %q", V1, V2, Azure)
	}
}
