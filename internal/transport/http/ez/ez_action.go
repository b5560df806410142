// Package ez 把 "绑定入参 -> 调用 -> 统一错误映射 -> 输出" 收敛成一行注册。
package ez

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"perfume-catalog/internal/core/auth"
	"perfume-catalog/internal/domain"
	"perfume-catalog/internal/service"
	mdw "perfume-catalog/internal/transport/http/middleware"
	resp "perfume-catalog/internal/transport/http/response"
)

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.FormFile 取
)

// AErr 直接指定状态码的错误，优先于领域错误映射
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error { return &AErr{Code: http.StatusBadRequest, Msg: msg} }

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string      // "GET" | "POST" | "PUT" | "DELETE"
	Path    string      // 例："/categories/:id"
	Binder  Binder      // 绑定方式
	Access  auth.Access // 零值为公开
	Status  int         // 成功状态码，默认 200
	Handler func(c *gin.Context, in *I) (O, error)
}

type EZ struct {
	g      *gin.RouterGroup
	parser auth.TokenParser
	log    *zap.Logger
}

func New(g *gin.RouterGroup, parser auth.TokenParser, log *zap.Logger) EZ {
	return EZ{g: g, parser: parser, log: log}
}

// Group 子分组，可附带额外中间件（如登录限流）
func (e EZ) Group(path string, handlers ...gin.HandlerFunc) EZ {
	return EZ{g: e.g.Group(path, handlers...), parser: e.parser, log: e.log}
}

// RegisterAction 注册动作；鉴权在绑定之前
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone
		}
		if bindErr != nil {
			failBind(c, bindErr)
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, e.log, err)
			return
		}
		if c.Writer.Written() { // 文件流等已自行输出
			return
		}
		resp.OK(c, a.Status, out)
	}

	method := strings.ToUpper(a.Method)
	if method == "" {
		method = http.MethodPost
	}
	e.g.Handle(method, a.Path, mdw.Guard(e.parser, a.Access), h)
}

// Fail 错误 -> 状态码：AErr 优先，其次按领域错误分类；未知错误只记日志不外泄
func Fail(c *gin.Context, log *zap.Logger, err error) {
	var ae *AErr
	if errors.As(err, &ae) {
		resp.Abort(c, ae.Code, ae.Error())
		return
	}
	var ve *service.ValidationError
	if errors.As(err, &ve) {
		resp.AbortFields(c, http.StatusBadRequest, "Validation failed", ve.Fields)
		return
	}
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		resp.Abort(c, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}

	switch domain.KindOf(err) {
	case domain.KindValidation:
		resp.Abort(c, http.StatusBadRequest, err.Error())
	case domain.KindNotFound:
		resp.Abort(c, http.StatusNotFound, err.Error())
	case domain.KindConflict:
		resp.Abort(c, http.StatusConflict, err.Error())
	case domain.KindUnauthenticated:
		resp.Abort(c, http.StatusUnauthorized, err.Error())
	case domain.KindForbidden:
		resp.Abort(c, http.StatusForbidden, err.Error())
	default:
		log.Error("request failed",
			zap.String("rid", c.GetString(mdw.KeyRequestID)),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		_ = c.Error(err)
		resp.Abort(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

func failBind(c *gin.Context, err error) {
	var ves validator.ValidationErrors
	var mbe *http.MaxBytesError
	var syn *json.SyntaxError
	var typ *json.UnmarshalTypeError
	switch {
	case errors.As(err, &ves):
		resp.AbortFields(c, http.StatusBadRequest, "Validation failed", service.FieldErrors(ves))
	case errors.As(err, &mbe):
		resp.Abort(c, http.StatusRequestEntityTooLarge, "request body too large")
	case errors.Is(err, io.EOF), errors.As(err, &syn):
		resp.Abort(c, http.StatusBadRequest, "Malformed request body")
	case errors.As(err, &typ):
		resp.AbortFields(c, http.StatusBadRequest, "Validation failed", map[string]string{typ.Field: "has the wrong type"})
	default:
		resp.Abort(c, http.StatusBadRequest, err.Error())
	}
}

// ParamID 解析路径上的正整数 id
func ParamID(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || v == 0 {
		return 0, BadRequest("invalid " + name)
	}
	return uint(v), nil
}
