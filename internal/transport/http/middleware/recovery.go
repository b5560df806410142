package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "perfume-catalog/internal/transport/http/response"
)

// PanicResponse 交给 ginzap.CustomRecoveryWithZap，堆栈已由 ginzap 记录
func PanicResponse(c *gin.Context, _ any) {
	resp.Abort(c, http.StatusInternalServerError, "An unexpected error occurred")
}
