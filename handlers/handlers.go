package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// fail writes the API error envelope.
func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// reason strips the sentinel prefix from a wrapped service error, leaving the
// client-facing message ("invalid input: Please add a job title" -> "Please
// add a job title").
func reason(err error) string {
	msg := err.Error()
	if i := strings.Index(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
