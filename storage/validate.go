package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/moyoez/fileshare-go/types"
)

// Policy enforces count, size and extension rules before any byte is
// persisted, and maps extensions to categories.
type Policy struct {
	MaxFileSize  int64
	MaxFiles     int
	AllowUnknown bool

	categories map[string]types.Category
	convert    map[string]struct{}
}

func NewPolicy(cfg types.AppConfig) *Policy {
	p := &Policy{
		MaxFileSize:  cfg.MaxFileSize,
		MaxFiles:     cfg.MaxFilesPerRequest,
		AllowUnknown: cfg.AllowUnknownTypes,
		categories:   make(map[string]types.Category),
		convert:      make(map[string]struct{}),
	}
	for _, ext := range cfg.ImageExtensions {
		p.categories[strings.ToLower(ext)] = types.CategoryImage
	}
	for _, ext := range cfg.DocumentExtensions {
		p.categories[strings.ToLower(ext)] = types.CategoryDocument
	}
	for _, ext := range cfg.MediaExtensions {
		p.categories[strings.ToLower(ext)] = types.CategoryMedia
	}
	for _, ext := range cfg.ArchiveExtensions {
		p.categories[strings.ToLower(ext)] = types.CategoryArchive
	}
	for _, ext := range cfg.ConvertExtensions {
		p.convert[strings.ToLower(ext)] = struct{}{}
	}
	return p
}

// CheckBatch validates the batch-level file count.
func (p *Policy) CheckBatch(count int) error {
	if count > p.MaxFiles {
		return fmt.Errorf("%w: %d files, maximum %d allowed per request", ErrTooManyFiles, count, p.MaxFiles)
	}
	return nil
}

// CheckFile validates one file's declared size and extension. The size is
// re-checked against actual bytes during the write, since a multipart part
// may misreport it.
func (p *Policy) CheckFile(name string, size int64) error {
	if size > p.MaxFileSize {
		return fmt.Errorf("%w: %s exceeds maximum allowed size %s",
			ErrFileTooLarge, humanize.IBytes(uint64(size)), humanize.IBytes(uint64(p.MaxFileSize)))
	}
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := p.categories[ext]; !ok && !p.AllowUnknown {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	return nil
}

// Category returns the classification bucket for a filename. Unknown
// extensions classify as other.
func (p *Policy) Category(name string) types.Category {
	if cat, ok := p.categories[strings.ToLower(filepath.Ext(name))]; ok {
		return cat
	}
	return types.CategoryOther
}

// ShouldConvert reports whether a stored file's format is in the convert-set.
func (p *Policy) ShouldConvert(name string) bool {
	_, ok := p.convert[strings.ToLower(filepath.Ext(name))]
	return ok
}
