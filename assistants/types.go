package assistants

// RunStatus is the lifecycle state of an assistant run.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusExpired        RunStatus = "expired"
)

// Pending reports whether the run is still making progress and should be
// polled again. Every other status is terminal; tool-action handoffs are
// not resumed and fail the run.
func (s RunStatus) Pending() bool {
	return s == RunStatusQueued || s == RunStatusInProgress
}

type assistantResp struct {
	ID string `json:"id"`
}

type threadResp struct {
	ID string `json:"id"`
}

type runResp struct {
	ID     string    `json:"id"`
	Status RunStatus `json:"status"`
}

type messageContentText struct {
	Value string `json:"value"`
}

type messageContent struct {
	Type string              `json:"type"`
	Text *messageContentText `json:"text"`
}

type messageResp struct {
	ID      string           `json:"id"`
	Role    string           `json:"role"`
	Content []messageContent `json:"content"`
}

type messageListResp struct {
	Data []messageResp `json:"data"`
}

// messageAttachment is the V2 shape for attaching uploaded files to a
// message for file search.
type messageAttachment struct {
	FileID string          `json:"file_id"`
	Tools  []toolTypeField `json:"tools"`
}

type toolTypeField struct {
	Type string `json:"type"`
}
