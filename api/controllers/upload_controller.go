package controllers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/fileshare-go/tool"
	"github.com/moyoez/fileshare-go/types"
)

// BatchProcessor is the upload pipeline behind the controller. Implemented
// by api.Coordinator.
type BatchProcessor interface {
	CheckBatch(count int) error
	ProcessBatch(ctx context.Context, files []*multipart.FileHeader) types.BatchResult
}

type UploadController struct {
	processor BatchProcessor
}

func NewUploadController(processor BatchProcessor) *UploadController {
	return &UploadController{processor: processor}
}

// HandleUpload handles POST /upload: a multipart batch under the "files"
// field. The response enumerates every file's outcome individually;
// batch-level violations reject the whole request before any byte is
// written. Client disconnect cancels in-flight writes via the request
// context.
func (ctrl *UploadController) HandleUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		tool.DefaultLogger.Errorf("[Upload] Failed to parse multipart form: %v", err)
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid multipart request"))
		return
	}

	files := form.File["files"]
	if err := ctrl.processor.CheckBatch(len(files)); err != nil {
		tool.DefaultLogger.Warnf("[Upload] Rejected batch of %d files: %v", len(files), err)
		c.JSON(http.StatusBadRequest, tool.FastReturnError(err.Error()))
		return
	}

	tool.DefaultLogger.Infof("[Upload] Received batch of %d files from %s", len(files), c.ClientIP())
	result := ctrl.processor.ProcessBatch(c.Request.Context(), files)
	c.JSON(http.StatusOK, result)
}
