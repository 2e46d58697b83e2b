package types

// Event is a notification pushed to connected web clients over the event
// WebSocket. Data carries event-specific fields (file name, size, reason).
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// Event types emitted by the service.
const (
	EventUploadStored  = "upload_stored"
	EventConvertStart  = "convert_start"
	EventConvertDone   = "convert_done"
	EventConvertFailed = "convert_failed"
	EventFileDeleted   = "file_deleted"
)
