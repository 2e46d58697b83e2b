package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/skip2/go-qrcode"

	"github.com/moyoez/fileshare-go/tool"
)

const (
	defaultQRSize = 200
	maxQRSize     = 512
)

type QRCodeController struct {
	shareURL string
}

// NewQRCodeController creates the QR controller. shareURL is the address
// encoded by default when the request does not carry its own data.
func NewQRCodeController(shareURL string) *QRCodeController {
	return &QRCodeController{shareURL: shareURL}
}

// HandleQRCode returns a PNG QR code for sharing the service address.
// GET /qr?size=200x200&data=<url-encoded-content>; data defaults to the
// configured share URL.
func (ctrl *QRCodeController) HandleQRCode(c *gin.Context) {
	data := c.Query("data")
	if data == "" {
		data = ctrl.shareURL
	}
	if data == "" {
		c.JSON(http.StatusBadRequest, tool.FastReturnError("Missing required parameter: data"))
		return
	}

	size := parseSize(c.Query("size"))
	if size <= 0 {
		size = defaultQRSize
	}
	if size > maxQRSize {
		size = maxQRSize
	}

	png, err := qrcode.Encode(data, qrcode.Medium, size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, tool.FastReturnError("Failed to encode QR code: "+err.Error()))
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// parseSize parses size from "200x200" or "200" and returns the pixel dimension.
func parseSize(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if idx := strings.Index(s, "x"); idx > 0 {
		s = strings.TrimSpace(s[:idx])
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
