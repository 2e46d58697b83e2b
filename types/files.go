package types

import "time"

// Category is the classification bucket a stored file belongs to,
// derived from its extension.
type Category string

const (
	CategoryImage    Category = "images"
	CategoryDocument Category = "documents"
	CategoryMedia    Category = "media"
	CategoryArchive  Category = "archives"
	CategoryOther    Category = "other"
)

// FileState is the post-processing state of a stored file.
type FileState string

const (
	StateRaw        FileState = "raw"
	StateProcessing FileState = "processing"
	StateReady      FileState = "ready"
	StateFailed     FileState = "failed"
)

// FileEntry describes one stored file as reported by the listing API.
type FileEntry struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	State   FileState `json:"state"`
	ModTime time.Time `json:"modTime"`
}

// CategoryView groups current files by category. It is a projection of the
// storage directory, recomputed on every list request.
type CategoryView map[Category][]FileEntry

// UploadOutcome is the per-file result reported in a batch upload response.
type UploadOutcome struct {
	FileName   string `json:"filename"`
	StoredName string `json:"stored_name,omitempty"`
	Success    bool   `json:"success"`
	Size       int64  `json:"size,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BatchResult aggregates every file's outcome for one upload request.
// Counts and the errors list match what the upload page has always consumed.
type BatchResult struct {
	Successful int             `json:"successful"`
	Failed     int             `json:"failed"`
	Results    []UploadOutcome `json:"results"`
	Errors     []string        `json:"errors"`
}
