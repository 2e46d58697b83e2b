package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/moyoez/fileshare-go/tool"
)

// PartSuffix marks in-flight temp files. Listing and archiving skip it.
const PartSuffix = ".part"

const copyBufferSize = 2 * 1024 * 1024

// Writer streams uploads to disk with bounded memory. A file becomes visible
// under its final name only after the stream is fully flushed: bytes go to a
// temp name first and are renamed into place on completion (atomic within
// the same filesystem).
type Writer struct {
	root      string
	sizeLimit int64
}

func NewWriter(root string, sizeLimit int64) *Writer {
	return &Writer{root: root, sizeLimit: sizeLimit}
}

// Write streams r to name under the storage root and returns the bytes
// written. On any failure or context cancellation the partial file is
// removed before returning; no partial file is ever left visible.
func (w *Writer) Write(ctx context.Context, name string, r io.Reader) (int64, error) {
	final := filepath.Join(w.root, name)
	tmp := final + PartSuffix

	file, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: create temp file: %v", ErrWriteFailed, err)
	}

	written, err := copyWithContext(ctx, file, r, w.sizeLimit)
	if err != nil {
		w.discard(file, tmp)
		if ctx.Err() != nil {
			return written, ctx.Err()
		}
		if err == errSizeLimit {
			return written, fmt.Errorf("%w: stream exceeded declared limit", ErrFileTooLarge)
		}
		return written, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	if err := file.Sync(); err != nil {
		w.discard(file, tmp)
		return written, fmt.Errorf("%w: sync: %v", ErrWriteFailed, err)
	}
	if err := file.Close(); err != nil {
		w.remove(tmp)
		return written, fmt.Errorf("%w: close: %v", ErrWriteFailed, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		w.remove(tmp)
		return written, fmt.Errorf("%w: rename: %v", ErrWriteFailed, err)
	}
	return written, nil
}

func (w *Writer) discard(file *os.File, tmp string) {
	if err := file.Close(); err != nil {
		tool.DefaultLogger.Errorf("Failed to close temp file: %v", err)
	}
	w.remove(tmp)
}

func (w *Writer) remove(tmp string) {
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		tool.DefaultLogger.Errorf("Failed to remove partial file: %v", err)
	}
}

var errSizeLimit = fmt.Errorf("size limit exceeded")

// copyWithContext copies from src to dst while respecting context
// cancellation, aborting once more than limit bytes arrive (limit <= 0 means
// unlimited). It checks the context before each read.
func copyWithContext(ctx context.Context, dst io.Writer, src io.Reader, limit int64) (int64, error) {
	buf := make([]byte, copyBufferSize)
	var written int64
	for {
		select {
		case <-ctx.Done():
			return written, ctx.Err()
		default:
		}

		nr, readErr := src.Read(buf)
		if nr > 0 {
			if limit > 0 && written+int64(nr) > limit {
				return written, errSizeLimit
			}
			nw, writeErr := dst.Write(buf[0:nr])
			if nw < 0 || nr < nw {
				nw = 0
				if writeErr == nil {
					writeErr = fmt.Errorf("invalid write result")
				}
			}
			written += int64(nw)
			if writeErr != nil {
				return written, writeErr
			}
			if nr != nw {
				return written, io.ErrShortWrite
			}
		}
		if readErr != nil {
			if readErr == io.EOF {
				return written, nil
			}
			return written, readErr
		}
	}
}
