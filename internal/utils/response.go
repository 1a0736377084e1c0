package utils

import "github.com/gin-gonic/gin"

// ErrorResponse is the body of every non-2xx reply.
func ErrorResponse(message string) gin.H {
	return gin.H{"error": message}
}
