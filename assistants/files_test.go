package assistants

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/neferdata/allms-go/llm"
)

func TestMimeTypeOf(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"report.pdf", "application/pdf", true},
		{"Notes.TXT", "text/plain", true},
		{"data.csv", "text/csv", true},
		{"deck.pptx", "application/vnd.openxmlformats-officedocument.presentationml.presentation", true},
		{"archive.zip", "application/zip", true},
		{"binary.exe", "", false},
		{"noextension", "", false},
	}
	for _, tt := range tests {
		got, ok := MimeTypeOf(tt.name)
		if got != tt.want || ok != tt.ok {
			t.Errorf("MimeTypeOf(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFileUpload(t *testing.T) {
	var gotPurpose, gotFilename, gotPartType string
	var gotData []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if err != nil {
			t.Errorf("bad content type: %v", err)
		}
		reader := multipart.NewReader(r.Body, params["boundary"])
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("multipart read: %v", err)
			}
			switch part.FormName() {
			case "purpose":
				data, _ := io.ReadAll(part)
				gotPurpose = string(data)
			case "file":
				gotFilename = part.FileName()
				gotPartType = part.Header.Get("Content-Type")
				gotData, _ = io.ReadAll(part)
			}
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "file_1"})
	}))
	t.Cleanup(srv.Close)
	t.Setenv(envAPIURL, srv.URL)

	f := NewFile("docs/report.pdf", "sk-test", zerolog.Nop(), WithHTTPClient(srv.Client()))
	if err := f.Upload(context.Background(), []byte("%PDF-1.4")); err != nil {
		t.Fatalf("Upload error: %v", err)
	}

	if f.ID != "file_1" {
		t.Errorf("ID = %q", f.ID)
	}
	if gotPurpose != "assistants" {
		t.Errorf("purpose = %q", gotPurpose)
	}
	if gotFilename != "report.pdf" {
		t.Errorf("filename = %q", gotFilename)
	}
	if gotPartType != "application/pdf" {
		t.Errorf("part content type = %q", gotPartType)
	}
	if string(gotData) != "%PDF-1.4" {
		t.Errorf("data = %q", gotData)
	}
}

func TestFileUploadRejectsUnknownExtension(t *testing.T) {
	f := NewFile("binary.exe", "sk-test", zerolog.Nop())
	err := f.Upload(context.Background(), []byte{0x4d, 0x5a})
	if !llm.IsConfigurationError(err) {
		t.Errorf("expected configuration error, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "binary.exe") {
		t.Errorf("error %q does not name the file", err.Error())
	}
}

func TestFileDelete(t *testing.T) {
	var deleted string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			deleted = r.URL.Path
		}
		w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)
	t.Setenv(envAPIURL, srv.URL)

	f := NewFile("report.pdf", "sk-test", zerolog.Nop(), WithHTTPClient(srv.Client()))
	f.ID = "file_1"
	if err := f.Delete(context.Background()); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if deleted != "/v1/files/file_1" {
		t.Errorf("deleted path = %q", deleted)
	}
	if f.ID != "" {
		t.Error("ID must be cleared after delete")
	}
}

func TestFileDeleteRequiresUpload(t *testing.T) {
	f := NewFile("report.pdf", "sk-test", zerolog.Nop())
	if err := f.Delete(context.Background()); !llm.IsResourceStateError(err) {
		t.Errorf("expected resource state error, got %v", err)
	}
}
