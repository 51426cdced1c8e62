package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a structured error response. Server-side failures carry only
// the message; the underlying error stays in the logs.
func JSONError(c *gin.Context, status int, err error, message string) {
	body := gin.H{
		"status":  status,
		"message": message,
	}
	if status < http.StatusInternalServerError {
		body["error"] = err.Error()
	}
	c.JSON(status, body)
}
