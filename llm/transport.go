package llm

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultHTTPTimeout bounds a single completion request end to end.
const DefaultHTTPTimeout = 180 * time.Second

// NewHTTPClient returns the http.Client used when the caller does not
// supply one.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: DefaultHTTPTimeout}
}

// Post performs a single JSON POST against a provider endpoint. There is
// exactly one attempt: transient failures surface to the caller as
// transport errors rather than being retried.
func Post(ctx context.Context, client *http.Client, provider, url string, header http.Header, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, NewTransportError(provider, "failed to build request", 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, NewTransportError(provider, "request failed", 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(provider, "failed to read response body", resp.StatusCode, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, NewTransportError(provider,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, truncate(string(respBody), 512)),
			resp.StatusCode, nil)
	}
	return respBody, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
