package storage

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/moyoez/fileshare-go/tool"
)

// Archiver streams a zip of the current directory snapshot. Memory use is
// independent of the aggregate archive size: entries are deflated straight
// into the destination writer.
type Archiver struct {
	catalog *Catalog
}

func NewArchiver(catalog *Catalog) *Archiver {
	return &Archiver{catalog: catalog}
}

// WriteZip snapshots the current filenames, then appends each file's bytes
// to w in lexicographic order. Files that vanish between snapshot and read
// are skipped (logged, not fatal) and counted in skipped; the stream is a
// structurally valid zip either way. A write error usually means the client
// went away, so the build stops there.
func (a *Archiver) WriteZip(ctx context.Context, w io.Writer) (skipped int, err error) {
	names, err := a.catalog.Names()
	if err != nil {
		return 0, err
	}

	zw := zip.NewWriter(w)
	for _, name := range names {
		select {
		case <-ctx.Done():
			_ = zw.Close()
			return skipped, ctx.Err()
		default:
		}

		file, err := os.Open(filepath.Join(a.catalog.root, name))
		if err != nil {
			tool.DefaultLogger.Warnf("[Archive] Skipping %s: %v", name, err)
			skipped++
			continue
		}
		info, err := file.Stat()
		if err != nil || info.IsDir() {
			_ = file.Close()
			tool.DefaultLogger.Warnf("[Archive] Skipping %s: not a readable file", name)
			skipped++
			continue
		}

		header := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: info.ModTime(),
		}
		entry, err := zw.CreateHeader(header)
		if err != nil {
			_ = file.Close()
			_ = zw.Close()
			return skipped, fmt.Errorf("archive entry %s: %w", name, err)
		}
		if _, err := copyWithContext(ctx, entry, file, 0); err != nil {
			_ = file.Close()
			_ = zw.Close()
			return skipped, fmt.Errorf("archive write %s: %w", name, err)
		}
		if err := file.Close(); err != nil {
			tool.DefaultLogger.Errorf("[Archive] Failed to close %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return skipped, fmt.Errorf("finalize archive: %w", err)
	}
	return skipped, nil
}
