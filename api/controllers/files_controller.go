package controllers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/moyoez/fileshare-go/process"
	"github.com/moyoez/fileshare-go/storage"
	"github.com/moyoez/fileshare-go/tool"
	"github.com/moyoez/fileshare-go/types"
)

type FilesController struct {
	catalog *storage.Catalog
	notify  process.Notifier
}

func NewFilesController(catalog *storage.Catalog, notify process.Notifier) *FilesController {
	return &FilesController{catalog: catalog, notify: notify}
}

// HandleList handles GET /files: the current files grouped by category.
// Every call re-scans storage, so the listing never drifts from disk.
func (ctrl *FilesController) HandleList(c *gin.Context) {
	view, err := ctrl.catalog.List()
	if err != nil {
		tool.DefaultLogger.Errorf("[Files] Failed to list files: %v", err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to list files"))
		return
	}
	c.JSON(http.StatusOK, view)
}

// HandleGet handles GET /files/:filename: serves one stored file with a
// sniffed content type.
func (ctrl *FilesController) HandleGet(c *gin.Context) {
	name := c.Param("filename")

	entry, err := ctrl.catalog.Stat(name)
	if err != nil {
		ctrl.replyError(c, name, err)
		return
	}
	path, err := ctrl.catalog.Path(name)
	if err != nil {
		ctrl.replyError(c, name, err)
		return
	}

	contentType := "application/octet-stream"
	if mtype, err := mimetype.DetectFile(path); err == nil {
		contentType = mtype.String()
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `inline; filename="`+entry.Name+`"`)
	c.File(path)
}

// HandleDelete handles DELETE /files/:filename.
func (ctrl *FilesController) HandleDelete(c *gin.Context) {
	name := c.Param("filename")

	if err := ctrl.catalog.Delete(name); err != nil {
		ctrl.replyError(c, name, err)
		return
	}

	tool.DefaultLogger.Infof("[Files] Deleted file: %s", name)
	if ctrl.notify != nil {
		ctrl.notify.Broadcast(&types.Event{
			Type: types.EventFileDeleted,
			Data: map[string]any{"name": name},
		})
	}
	c.JSON(http.StatusOK, tool.FastReturnMessage("File "+name+" deleted successfully"))
}

func (ctrl *FilesController) replyError(c *gin.Context, name string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, os.ErrNotExist):
		c.JSON(http.StatusNotFound, tool.FastReturnError("File not found"))
	case errors.Is(err, storage.ErrInvalidName):
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Invalid file name"))
	default:
		tool.DefaultLogger.Errorf("[Files] Operation on %s failed: %v", name, err)
		c.JSON(http.StatusInternalServerError, tool.FastReturnError(err.Error()))
	}
}
