package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/fileshare-go/types"
)

func writeTestFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func newTestCatalog(t *testing.T) (*Catalog, string) {
	t.Helper()
	dir := t.TempDir()
	return NewCatalog(dir, NewPolicy(testConfig()), nil), dir
}

func TestListGroupsByCategory(t *testing.T) {
	c, dir := newTestCatalog(t)
	writeTestFile(t, dir, "photo.png", "img")
	writeTestFile(t, dir, "notes.txt", "doc")
	writeTestFile(t, dir, "song.mp3", "media")
	writeTestFile(t, dir, "bundle.zip", "zip")
	writeTestFile(t, dir, "mystery.bin", "???")

	view, err := c.List()
	require.NoError(t, err)

	assert.Len(t, view[types.CategoryImage], 1)
	assert.Len(t, view[types.CategoryDocument], 1)
	assert.Len(t, view[types.CategoryMedia], 1)
	assert.Len(t, view[types.CategoryArchive], 1)
	assert.Len(t, view[types.CategoryOther], 1)
	assert.Equal(t, "photo.png", view[types.CategoryImage][0].Name)
	assert.Equal(t, int64(3), view[types.CategoryImage][0].Size)
	assert.Equal(t, types.StateReady, view[types.CategoryImage][0].State)
}

func TestListHidesTempAndDotFiles(t *testing.T) {
	c, dir := newTestCatalog(t)
	writeTestFile(t, dir, "visible.txt", "yes")
	writeTestFile(t, dir, "inflight.txt"+PartSuffix, "no")
	writeTestFile(t, dir, ".hidden", "no")

	view, err := c.List()
	require.NoError(t, err)

	total := 0
	for _, files := range view {
		total += len(files)
	}
	assert.Equal(t, 1, total)
	assert.Equal(t, "visible.txt", view[types.CategoryDocument][0].Name)
}

func TestDelete(t *testing.T) {
	c, dir := newTestCatalog(t)
	writeTestFile(t, dir, "doomed.txt", "bye")

	require.NoError(t, c.Delete("doomed.txt"))
	_, err := os.Stat(filepath.Join(dir, "doomed.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteMissingFile(t *testing.T) {
	c, _ := newTestCatalog(t)

	err := c.Delete("never-existed.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRejectsTraversal(t *testing.T) {
	c, _ := newTestCatalog(t)

	assert.ErrorIs(t, c.Delete("../outside.txt"), ErrInvalidName)
	assert.ErrorIs(t, c.Delete(".hidden"), ErrInvalidName)
}

func TestStat(t *testing.T) {
	c, dir := newTestCatalog(t)
	writeTestFile(t, dir, "exists.txt", "hello")

	entry, err := c.Stat("exists.txt")
	require.NoError(t, err)
	assert.Equal(t, int64(5), entry.Size)

	_, err = c.Stat("missing.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

type fixedStates struct{ state types.FileState }

func (f fixedStates) State(string) types.FileState { return f.state }
func (f fixedStates) Forget(string)                {}

type recordingStates struct {
	state     types.FileState
	forgotten []string
}

func (r *recordingStates) State(string) types.FileState { return r.state }
func (r *recordingStates) Forget(name string)           { r.forgotten = append(r.forgotten, name) }

func TestDeleteClearsTrackedState(t *testing.T) {
	dir := t.TempDir()
	states := &recordingStates{state: types.StateFailed}
	c := NewCatalog(dir, NewPolicy(testConfig()), states)
	writeTestFile(t, dir, "redo.png", "img")

	require.NoError(t, c.Delete("redo.png"))
	assert.Equal(t, []string{"redo.png"}, states.forgotten)
}

func TestDeleteMissingFileForgetsNothing(t *testing.T) {
	dir := t.TempDir()
	states := &recordingStates{state: types.StateReady}
	c := NewCatalog(dir, NewPolicy(testConfig()), states)

	assert.ErrorIs(t, c.Delete("absent.txt"), ErrNotFound)
	assert.Empty(t, states.forgotten)
}

func TestListReportsProcessingState(t *testing.T) {
	dir := t.TempDir()
	c := NewCatalog(dir, NewPolicy(testConfig()), fixedStates{state: types.StateProcessing})
	writeTestFile(t, dir, "busy.png", "img")

	view, err := c.List()
	require.NoError(t, err)
	assert.Equal(t, types.StateProcessing, view[types.CategoryImage][0].State)
}
