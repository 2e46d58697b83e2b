package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moyoez/fileshare-go/storage"
)

// ServiceVersion is reported by the health endpoint.
const ServiceVersion = "2.0.0"

type StatusController struct {
	catalog *storage.Catalog
}

func NewStatusController(catalog *storage.Catalog) *StatusController {
	return &StatusController{catalog: catalog}
}

// HandleStatus handles GET /: the health probe the orchestration layer polls
// to decide restart policy. Counting files doubles as a storage liveness
// check.
func (ctrl *StatusController) HandleStatus(c *gin.Context) {
	names, err := ctrl.catalog.Names()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"service": "fileshare",
			"version": ServiceVersion,
			"status":  "degraded",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"service": "fileshare",
		"version": ServiceVersion,
		"status":  "ok",
		"files":   len(names),
	})
}
