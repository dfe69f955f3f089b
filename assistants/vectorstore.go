package assistants

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/neferdata/allms-go/llm"
)

// VectorStoreStatus is the lifecycle state of a vector store or one of
// its file batches.
type VectorStoreStatus string

const (
	VectorStoreStatusInProgress VectorStoreStatus = "in_progress"
	VectorStoreStatusCompleted  VectorStoreStatus = "completed"
	VectorStoreStatusExpired    VectorStoreStatus = "expired"
	VectorStoreStatusCancelled  VectorStoreStatus = "cancelled"
	VectorStoreStatusFailed     VectorStoreStatus = "failed"
)

// FileCounts summarizes indexing progress across a store's files.
type FileCounts struct {
	InProgress int `json:"in_progress"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	Cancelled  int `json:"cancelled"`
	Total      int `json:"total"`
}

type vectorStoreResp struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Status     VectorStoreStatus `json:"status"`
	FileCounts FileCounts        `json:"file_counts"`
}

// VectorStore is a server-side document index the assistant can search.
// Vector stores exist in assistants V2 and Azure only.
type VectorStore struct {
	ID   string
	Name string

	session *Session
}

// NewVectorStore prepares a vector store handle. Create must be called
// before files can be added.
func NewVectorStore(name, apiKey string, logger zerolog.Logger, opts ...Option) *VectorStore {
	return &VectorStore{
		Name:    name,
		session: NewSession(nil, apiKey, logger, opts...),
	}
}

// Create allocates the store on the provider side.
func (vs *VectorStore) Create(ctx context.Context) error {
	if vs.session.version == V1 {
		return llm.NewConfigurationError("vector stores require assistants v2 or azure")
	}
	body := map[string]any{"name": vs.Name}
	var resp vectorStoreResp
	if err := vs.session.call(ctx, http.MethodPost, vs.session.version.url("vector_stores"), body, &resp); err != nil {
		return err
	}
	if resp.ID == "" {
		return llm.NewResponseParseError(providerSlug, "vector store create response carried no id", nil)
	}
	vs.ID = resp.ID
	return nil
}

// AddFiles enqueues uploaded files for indexing as one batch.
func (vs *VectorStore) AddFiles(ctx context.Context, fileIDs []string) error {
	if vs.ID == "" {
		return llm.NewResourceStateError("vector store has not been created")
	}
	if len(fileIDs) == 0 {
		return llm.NewConfigurationError("at least one file id is required")
	}
	body := map[string]any{"file_ids": fileIDs}
	var resp struct {
		ID     string            `json:"id"`
		Status VectorStoreStatus `json:"status"`
	}
	return vs.session.call(ctx, http.MethodPost,
		vs.session.version.url("vector_stores", vs.ID, "file_batches"), body, &resp)
}

// Status fetches the store's current lifecycle state.
func (vs *VectorStore) Status(ctx context.Context) (VectorStoreStatus, error) {
	resp, err := vs.fetch(ctx)
	if err != nil {
		return "", err
	}
	return resp.Status, nil
}

// FileCounts fetches indexing progress for the store's files.
func (vs *VectorStore) FileCounts(ctx context.Context) (*FileCounts, error) {
	resp, err := vs.fetch(ctx)
	if err != nil {
		return nil, err
	}
	return &resp.FileCounts, nil
}

func (vs *VectorStore) fetch(ctx context.Context) (*vectorStoreResp, error) {
	if vs.ID == "" {
		return nil, llm.NewResourceStateError("vector store has not been created")
	}
	var resp vectorStoreResp
	if err := vs.session.call(ctx, http.MethodGet, vs.session.version.url("vector_stores", vs.ID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete removes the store and its index.
func (vs *VectorStore) Delete(ctx context.Context) error {
	if vs.ID == "" {
		return llm.NewResourceStateError("vector store has not been created")
	}
	if err := vs.session.call(ctx, http.MethodDelete, vs.session.version.url("vector_stores", vs.ID), nil, nil); err != nil {
		return err
	}
	vs.ID = ""
	return nil
}
