package controllers

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moyoez/fileshare-go/types"
)

type stubProcessor struct {
	maxFiles  int
	processed int
}

func (s *stubProcessor) CheckBatch(count int) error {
	if count == 0 {
		return fmt.Errorf("no files in request")
	}
	if count > s.maxFiles {
		return fmt.Errorf("too many files")
	}
	return nil
}

func (s *stubProcessor) ProcessBatch(_ context.Context, files []*multipart.FileHeader) types.BatchResult {
	s.processed = len(files)
	outcomes := make([]types.UploadOutcome, len(files))
	for i, h := range files {
		outcomes[i] = types.UploadOutcome{FileName: h.Filename, StoredName: h.Filename, Success: true, Size: h.Size}
	}
	return types.BatchResult{Successful: len(files), Results: outcomes, Errors: []string{}}
}

func setupUploadRouter(processor BatchProcessor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/upload", NewUploadController(processor).HandleUpload)
	return router
}

func uploadRequest(t *testing.T, names ...string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, name := range names {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("content of " + name))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleUploadDispatchesBatch(t *testing.T) {
	processor := &stubProcessor{maxFiles: 10}
	router := setupUploadRouter(processor)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "a.txt", "b.txt"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, processor.processed)
	assert.Contains(t, w.Body.String(), `"successful":2`)
}

func TestHandleUploadRejectsBatchLevelViolation(t *testing.T) {
	processor := &stubProcessor{maxFiles: 1}
	router := setupUploadRouter(processor)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, "a.txt", "b.txt"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, processor.processed, "no file may be written for a rejected batch")
}

func TestHandleUploadRejectsNonMultipart(t *testing.T) {
	router := setupUploadRouter(&stubProcessor{maxFiles: 10})

	req := httptest.NewRequest(http.MethodPost, "/upload", bytes.NewReader([]byte("plain body")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
