package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moyoez/fileshare-go/types"
)

func testConfig() types.AppConfig {
	return types.AppConfig{
		MaxFileSize:        1024,
		MaxFilesPerRequest: 3,
		ImageExtensions:    []string{".png", ".jpg"},
		DocumentExtensions: []string{".pdf", ".txt"},
		MediaExtensions:    []string{".mp3"},
		ArchiveExtensions:  []string{".zip"},
		ConvertExtensions:  []string{".png"},
	}
}

func TestCheckBatch(t *testing.T) {
	p := NewPolicy(testConfig())

	assert.NoError(t, p.CheckBatch(3))
	assert.ErrorIs(t, p.CheckBatch(4), ErrTooManyFiles)
}

func TestCheckFileSize(t *testing.T) {
	p := NewPolicy(testConfig())

	assert.NoError(t, p.CheckFile("a.txt", 1024))
	assert.ErrorIs(t, p.CheckFile("a.txt", 1025), ErrFileTooLarge)
}

func TestCheckFileExtension(t *testing.T) {
	p := NewPolicy(testConfig())

	assert.NoError(t, p.CheckFile("a.PNG", 1))
	assert.ErrorIs(t, p.CheckFile("a.exe", 1), ErrUnsupportedType)
	assert.ErrorIs(t, p.CheckFile("noext", 1), ErrUnsupportedType)
}

func TestCheckFileAllowUnknownTypes(t *testing.T) {
	cfg := testConfig()
	cfg.AllowUnknownTypes = true
	p := NewPolicy(cfg)

	assert.NoError(t, p.CheckFile("a.exe", 1))
	assert.Equal(t, types.CategoryOther, p.Category("a.exe"))
}

func TestCategory(t *testing.T) {
	p := NewPolicy(testConfig())

	assert.Equal(t, types.CategoryImage, p.Category("a.png"))
	assert.Equal(t, types.CategoryDocument, p.Category("a.pdf"))
	assert.Equal(t, types.CategoryMedia, p.Category("a.mp3"))
	assert.Equal(t, types.CategoryArchive, p.Category("a.zip"))
	assert.Equal(t, types.CategoryOther, p.Category("a.wat"))
}

func TestShouldConvert(t *testing.T) {
	p := NewPolicy(testConfig())

	assert.True(t, p.ShouldConvert("shot.png"))
	assert.True(t, p.ShouldConvert("SHOT.PNG"))
	assert.False(t, p.ShouldConvert("shot.jpg"))
}
