package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the uniform wrapper applied to every API response
type Envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// Human-readable message per HTTP status
var statusMessages = map[int]string{
	http.StatusOK:                  "Request successful.",
	http.StatusCreated:             "Resource created.",
	http.StatusNoContent:           "No content.",
	http.StatusBadRequest:          "Invalid request.",
	http.StatusUnauthorized:        "Unauthorized.",
	http.StatusForbidden:           "Access denied.",
	http.StatusNotFound:            "Resource not found.",
	http.StatusConflict:            "Conflict.",
	http.StatusInternalServerError: "Internal server error.",
}

func statusMessage(status int) string {
	if msg, ok := statusMessages[status]; ok {
		return msg
	}
	return http.StatusText(status)
}

// respond wraps the payload in the envelope and writes it with the given
// status. Every handler return path goes through here.
func respond(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{
		Status:  status,
		Message: statusMessage(status),
		Data:    data,
	})
}

// respondError wraps an error detail. The detail must already be
// client-safe; internal error text never goes here.
func respondError(c *gin.Context, status int, detail string) {
	respond(c, status, gin.H{"error": detail})
}
