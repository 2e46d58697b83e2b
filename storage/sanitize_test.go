package storage

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeStripsDirectoryComponents(t *testing.T) {
	n := NewNamer(t.TempDir())

	cases := map[string]string{
		"report.pdf":            "report.pdf",
		"../../etc/passwd.txt":  "passwd.txt",
		"/abs/path/photo.png":   "photo.png",
		`C:\Users\evil\doc.txt`: "doc.txt",
		"My Photo-1_x.jpeg":     "My Photo-1_x.jpeg",
		"sp@ce#y!.txt":          "spcey.txt",
		"UPPER.PNG":             "UPPER.png",
	}
	for input, want := range cases {
		got, err := n.Sanitize(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestSanitizeRejectsUnusableNames(t *testing.T) {
	n := NewNamer(t.TempDir())

	for _, input := range []string{"", ".", "..", "###", "!!!"} {
		_, err := n.Sanitize(input)
		assert.ErrorIs(t, err, ErrInvalidName, "input %q", input)
	}
}

func TestSanitizeSubstitutesStemWhenOnlyExtensionSurvives(t *testing.T) {
	n := NewNamer(t.TempDir())

	got, err := n.Sanitize("###.png")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(got, ".png"))
	assert.Greater(t, len(got), len(".png"))
}

func TestSanitizeCapsStemLength(t *testing.T) {
	n := NewNamer(t.TempDir())

	got, err := n.Sanitize(strings.Repeat("a", 200) + ".txt")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", maxStemLength)+".txt", got)
}

func TestReserveResolvesOnDiskCollisions(t *testing.T) {
	dir := t.TempDir()
	n := NewNamer(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data.txt"), []byte("x"), 0o644))

	got, err := n.Reserve("data.txt")
	require.NoError(t, err)
	assert.Equal(t, "data_1.txt", got)
}

func TestReserveNeverHandsOutTheSameNameTwice(t *testing.T) {
	n := NewNamer(t.TempDir())

	const workers = 20
	names := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name, err := n.Reserve("same.txt")
			assert.NoError(t, err)
			names[i] = name
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{}, workers)
	for _, name := range names {
		_, dup := seen[name]
		assert.False(t, dup, "name %q handed out twice", name)
		seen[name] = struct{}{}
	}
}

func TestReserveReleaseMakesNameAvailableAgain(t *testing.T) {
	n := NewNamer(t.TempDir())

	first, err := n.Reserve("a.txt")
	require.NoError(t, err)
	n.Release(first)

	second, err := n.Reserve("a.txt")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestReserveSeesInFlightTempFiles(t *testing.T) {
	dir := t.TempDir()
	n := NewNamer(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"+PartSuffix), []byte("x"), 0o644))

	got, err := n.Reserve("a.txt")
	require.NoError(t, err)
	assert.Equal(t, "a_1.txt", got)
}
