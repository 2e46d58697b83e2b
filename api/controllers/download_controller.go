package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/fileshare-go/storage"
	"github.com/moyoez/fileshare-go/tool"
)

const archiveName = "uploaded_files.zip"

type DownloadController struct {
	archiver *storage.Archiver
}

func NewDownloadController(archiver *storage.Archiver) *DownloadController {
	return &DownloadController{archiver: archiver}
}

// HandleDownload handles GET /download: streams a zip of all currently
// stored files. The archive is built against a snapshot of the directory;
// files deleted mid-build are skipped, never corrupting the stream. Nothing
// is buffered beyond one copy window, so memory stays flat regardless of
// how much is stored.
func (ctrl *DownloadController) HandleDownload(c *gin.Context) {
	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", `attachment; filename=`+archiveName)
	c.Status(http.StatusOK)

	skipped, err := ctrl.archiver.WriteZip(c.Request.Context(), c.Writer)
	if err != nil {
		// Headers are gone already; all we can do is log and drop the
		// connection. Usually this is the client going away mid-stream.
		tool.DefaultLogger.Warnf("[Download] Archive stream aborted: %v", err)
		return
	}
	if skipped > 0 {
		tool.DefaultLogger.Warnf("[Download] Archive shipped with %d entries skipped", skipped)
	}
}
