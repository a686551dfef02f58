package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response bodies are deliberately flat: {"message": ...} on success,
// {"error": ...} on failure. Request IDs travel in the X-Request-Id header,
// not the body.

func RespondMessage(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusOK, gin.H{"message": message})
}

func RespondError(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{"error": message})
}

func RespondBadRequest(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusBadRequest, message)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message)
}

// RespondInternal always sends a generic message; internal error text never
// reaches the caller.
func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message)
}
