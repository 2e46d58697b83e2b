package tool

import "github.com/gin-gonic/gin"

// FastReturnError wraps an error message in the common response envelope.
func FastReturnError(msg string) gin.H {
	return gin.H{
		"error": msg,
	}
}

// FastReturnMessage wraps a human-readable success message.
func FastReturnMessage(msg string) gin.H {
	return gin.H{
		"message": msg,
	}
}
