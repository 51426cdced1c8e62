package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"drop-auction/utils"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	fields := map[string]any{
		"method":  c.Request.Method,
		"path":    c.FullPath(),
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	}
	if fields["path"] == "" {
		fields["path"] = c.Request.URL.Path
	}
	if len(c.Errors) > 0 {
		fields["errors"] = c.Errors.String()
	}

	switch {
	case c.Writer.Status() >= 500:
		utils.Error("HTTP Request", fields)
	default:
		utils.Info("HTTP Request", fields)
	}
}
