package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

// ErrorBody 所有错误响应的统一结构
type ErrorBody struct {
	Timestamp time.Time         `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Path      string            `json:"path"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// Now 测试中可替换
var Now = time.Now

func NewError(c *gin.Context, status int, msg string, fields map[string]string) ErrorBody {
	if msg == "" {
		msg = statusText(status)
	}
	return ErrorBody{
		Timestamp: Now().UTC(),
		Status:    status,
		Error:     statusText(status),
		Message:   msg,
		Path:      c.Request.URL.Path,
		Errors:    fields,
	}
}

// Abort 写错误体并终止后续 handler
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, NewError(c, status, msg, nil))
}

func AbortFields(c *gin.Context, status int, msg string, fields map[string]string) {
	c.AbortWithStatusJSON(status, NewError(c, status, msg, fields))
}

// OK 成功时直接输出数据本身；204 不写 body
func OK(c *gin.Context, status int, data any) {
	if status == 0 {
		status = 200
	}
	if status == 204 {
		c.Status(status)
		return
	}
	c.JSON(status, data)
}
