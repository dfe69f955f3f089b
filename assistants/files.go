package assistants

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/neferdata/allms-go/llm"
)

// File is a document uploaded for assistant file search.
type File struct {
	ID   string
	Name string

	apiKey     string
	version    Version
	httpClient *http.Client
	logger     zerolog.Logger
	debug      bool
}

// NewFile prepares a file handle for upload. The name's extension decides
// the MIME type sent to the provider.
func NewFile(name, apiKey string, logger zerolog.Logger, opts ...Option) *File {
	// Reuse session options for transport settings.
	s := NewSession(nil, apiKey, logger, opts...)
	return &File{
		Name:       name,
		apiKey:     apiKey,
		version:    s.version,
		httpClient: s.httpClient,
		logger:     logger,
		debug:      s.debug,
	}
}

// Upload sends the file bytes with purpose "assistants" and records the
// provider-assigned file id.
func (f *File) Upload(ctx context.Context, data []byte) error {
	mimeType, ok := MimeTypeOf(f.Name)
	if !ok {
		return llm.NewConfigurationError(fmt.Sprintf("unsupported file extension for %q", f.Name))
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("purpose", "assistants"); err != nil {
		return llm.NewConfigurationError("failed to encode upload form: " + err.Error())
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, filepath.Base(f.Name)))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return llm.NewConfigurationError("failed to encode upload form: " + err.Error())
	}
	if _, err := part.Write(data); err != nil {
		return llm.NewConfigurationError("failed to encode upload form: " + err.Error())
	}
	if err := writer.Close(); err != nil {
		return llm.NewConfigurationError("failed to encode upload form: " + err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.version.url("files"), &buf)
	if err != nil {
		return llm.NewTransportError(providerSlug, "failed to build request", 0, err)
	}
	for key, values := range f.version.headers(f.apiKey) {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return llm.NewTransportError(providerSlug, "request failed", 0, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.NewTransportError(providerSlug, "failed to read response body", resp.StatusCode, err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return llm.NewTransportError(providerSlug,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, payload), resp.StatusCode, nil)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &out); err != nil {
		return llm.NewResponseParseError(providerSlug, "failed to decode file upload response", err)
	}
	if out.ID == "" {
		return llm.NewResponseParseError(providerSlug, "file upload response carried no id", nil)
	}
	f.ID = out.ID
	if f.debug {
		f.logger.Debug().Str("file_id", f.ID).Str("name", f.Name).Msg("File uploaded")
	}
	return nil
}

// Delete removes the uploaded file from the provider.
func (f *File) Delete(ctx context.Context) error {
	if f.ID == "" {
		return llm.NewResourceStateError("file has not been uploaded")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, f.version.url("files", f.ID), nil)
	if err != nil {
		return llm.NewTransportError(providerSlug, "failed to build request", 0, err)
	}
	for key, values := range f.version.headers(f.apiKey) {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return llm.NewTransportError(providerSlug, "request failed", 0, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(resp.Body)
		return llm.NewTransportError(providerSlug,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, payload), resp.StatusCode, nil)
	}
	f.ID = ""
	return nil
}

// mimeTypes maps supported upload extensions to MIME types.
var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".json": "application/json",
	".txt":  "text/plain",
	".html": "text/html",
	".c":    "text/x-c",
	".cpp":  "text/x-c++",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".java": "text/x-java",
	".md":   "text/markdown",
	".php":  "text/x-php",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".py":   "text/x-python",
	".rb":   "text/x-ruby",
	".tex":  "text/x-tex",
	// Supported by code interpreter but not retrieval.
	".css":  "text/css",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".js":   "text/javascript",
	".gif":  "image/gif",
	".png":  "image/png",
	".tar":  "application/x-tar",
	".ts":   "application/typescript",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xml":  "application/xml",
	".zip":  "application/zip",
	".csv":  "text/csv",
}

// MimeTypeOf resolves the MIME type for a filename by extension.
func MimeTypeOf(name string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(name))
	mt, ok := mimeTypes[ext]
	return mt, ok
}
