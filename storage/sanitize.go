package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode"

	"github.com/google/uuid"
)

const maxStemLength = 50

// Namer derives safe, collision-free on-disk names for client-supplied
// filenames. Reservations are tracked in-process so two files dispatched
// concurrently (same batch or not) can never race to the same target name;
// no locking of the storage directory is involved.
type Namer struct {
	root     string
	mu       sync.Mutex
	reserved map[string]struct{}
}

func NewNamer(root string) *Namer {
	return &Namer{
		root:     root,
		reserved: make(map[string]struct{}),
	}
}

// Sanitize strips directory components and disallowed characters from name
// and returns a name safe to join under the storage root. The extension is
// lowercased. Returns ErrInvalidName when nothing safe can be derived.
func (n *Namer) Sanitize(name string) (string, error) {
	// Drop any directory part, whatever the client's separator convention.
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == ".." || base == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	for _, r := range stem {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	stem = strings.TrimSpace(b.String())
	if len([]rune(stem)) > maxStemLength {
		stem = string([]rune(stem)[:maxStemLength])
	}

	if !validExt(ext) {
		ext = ""
	}
	if stem == "" {
		if ext == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		// Keep the upload rather than reject it: substitute a unique stem.
		stem = uuid.New().String()
	}
	return stem + ext, nil
}

func validExt(ext string) bool {
	if ext == "" || ext == "." {
		return false
	}
	for _, r := range ext[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// Reserve sanitizes name and resolves collisions against both on-disk files
// and names reserved by in-flight writes, appending _1, _2, ... before the
// extension. The returned name stays reserved until Commit or Release.
func (n *Namer) Reserve(name string) (string, error) {
	safe, err := n.Sanitize(name)
	if err != nil {
		return "", err
	}

	ext := filepath.Ext(safe)
	stem := strings.TrimSuffix(safe, ext)

	n.mu.Lock()
	defer n.mu.Unlock()

	candidate := safe
	for counter := 1; n.taken(candidate); counter++ {
		candidate = fmt.Sprintf("%s_%d%s", stem, counter, ext)
	}
	n.reserved[candidate] = struct{}{}
	return candidate, nil
}

// taken reports whether candidate exists on disk (including as an in-flight
// temp file) or is reserved. Caller holds n.mu.
func (n *Namer) taken(candidate string) bool {
	if _, ok := n.reserved[candidate]; ok {
		return true
	}
	if _, err := os.Lstat(filepath.Join(n.root, candidate)); err == nil {
		return true
	}
	_, err := os.Lstat(filepath.Join(n.root, candidate+PartSuffix))
	return err == nil
}

// Commit drops the reservation once the file is visible on disk.
func (n *Namer) Commit(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.reserved, name)
}

// Release drops the reservation for a write that never completed.
func (n *Namer) Release(name string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.reserved, name)
}
