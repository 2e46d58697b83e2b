package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/moyoez/fileshare-go/types"
)

// StateSource reports the post-processing state of a stored file, and
// forgets it once the file is gone.
type StateSource interface {
	State(name string) types.FileState
	Forget(name string)
}

// Catalog is the read/delete view over the storage directory. It keeps no
// cache: every List call re-scans the directory, so the view can never drift
// from actual contents. In-flight temp files are never exposed.
type Catalog struct {
	root   string
	policy *Policy
	states StateSource
}

// NewCatalog creates a catalog over root. states may be nil, in which case
// every listed file reports ready.
func NewCatalog(root string, policy *Policy, states StateSource) *Catalog {
	return &Catalog{root: root, policy: policy, states: states}
}

// List returns current files grouped by category. Files that finish writing
// during the scan may be missed; partially-written ones are never included.
func (c *Catalog) List() (types.CategoryView, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("scan upload dir: %w", err)
	}

	view := types.CategoryView{
		types.CategoryImage:    {},
		types.CategoryDocument: {},
		types.CategoryMedia:    {},
		types.CategoryArchive:  {},
		types.CategoryOther:    {},
	}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.Type().IsRegular() || hidden(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Deleted mid-scan, the next List will not see it either.
			continue
		}
		state := types.StateReady
		if c.states != nil {
			state = c.states.State(name)
		}
		cat := c.policy.Category(name)
		view[cat] = append(view[cat], types.FileEntry{
			Name:    name,
			Size:    info.Size(),
			State:   state,
			ModTime: info.ModTime(),
		})
	}
	for _, files := range view {
		sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	}
	return view, nil
}

// Names returns a sorted snapshot of current filenames, used by the archive
// builder for deterministic entry order.
func (c *Catalog) Names() ([]string, error) {
	entries, err := os.ReadDir(c.root)
	if err != nil {
		return nil, fmt.Errorf("scan upload dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() && !hidden(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Path resolves name to an absolute path strictly inside the storage root.
func (c *Catalog) Path(name string) (string, error) {
	base := filepath.Base(name)
	if base != name || hidden(base) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(c.root, base), nil
}

// Stat returns the entry for a single stored file, or ErrNotFound.
func (c *Catalog) Stat(name string) (types.FileEntry, error) {
	path, err := c.Path(name)
	if err != nil {
		return types.FileEntry{}, err
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return types.FileEntry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	state := types.StateReady
	if c.states != nil {
		state = c.states.State(name)
	}
	return types.FileEntry{Name: name, Size: info.Size(), State: state, ModTime: info.ModTime()}, nil
}

// Delete removes one file by name. Safe to call concurrently with uploads of
// differently-named files; concurrent readers of other entries are untouched.
func (c *Catalog) Delete(name string) error {
	path, err := c.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("delete %s: %w", name, err)
	}
	// A later upload under the same name must not inherit this file's
	// conversion state.
	if c.states != nil {
		c.states.Forget(name)
	}
	return nil
}

// hidden reports names the catalog never exposes: dot-files and in-flight
// temp files.
func hidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, PartSuffix)
}
