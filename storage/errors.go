package storage

import "errors"

var (
	// ErrInvalidName means no safe filename could be derived from the input.
	ErrInvalidName = errors.New("invalid file name")
	// ErrTooManyFiles means the batch exceeds the per-request file count limit.
	ErrTooManyFiles = errors.New("too many files")
	// ErrFileTooLarge means a file exceeds the per-file size limit, either by
	// declared size or by actual bytes streamed.
	ErrFileTooLarge = errors.New("file too large")
	// ErrUnsupportedType means the file extension is not in the allow-list.
	ErrUnsupportedType = errors.New("unsupported file type")
	// ErrWriteFailed means an I/O failure occurred while persisting a file.
	// The partial file is removed before this is returned.
	ErrWriteFailed = errors.New("write failed")
	// ErrNotFound means the named file does not exist in storage.
	ErrNotFound = errors.New("file not found")
)
