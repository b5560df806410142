package router

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"perfume-catalog/internal/core/auth"
	"perfume-catalog/internal/core/server"
	"perfume-catalog/internal/service"
	"perfume-catalog/internal/transport/http/ez"
	mdw "perfume-catalog/internal/transport/http/middleware"
)

type Limits struct {
	RPS            float64
	Burst          int
	MaxInFlight    int64
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

type Deps struct {
	Log         *zap.Logger
	Parser      auth.TokenParser
	Mode        string
	BasePath    string
	CorsOrigins []string
	Limits      Limits
	Modules     []Module
}

var jsonNamesOnce sync.Once

// useJSONFieldNames 校验错误里的字段名用 json tag
func useJSONFieldNames() {
	jsonNamesOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			service.RegisterJSONNames(v)
		}
	})
}

func NewAPIEngine(d Deps) *gin.Engine {
	useJSONFieldNames()

	r := server.NewRouter(d.Log, server.Options{
		Mode:        d.Mode,
		CorsOrigins: d.CorsOrigins,
		OnPanic:     mdw.PanicResponse,
	})

	// 中间件
	r.Use(mdw.RequestID())
	if d.Limits.RPS > 0 {
		r.Use(mdw.RateLimit(rate.Limit(d.Limits.RPS), max(1, d.Limits.Burst)))
	}
	if d.Limits.MaxInFlight > 0 {
		r.Use(mdw.ConcurrencyLimit(d.Limits.MaxInFlight))
	}
	if d.Limits.MaxBodyBytes > 0 {
		r.Use(mdw.MaxBodyBytes(d.Limits.MaxBodyBytes))
	}
	if d.Limits.RequestTimeout > 0 {
		r.Use(mdw.Timeout(d.Limits.RequestTimeout))
	}
	r.Use(mdw.Metrics(), mdw.AccessLog(d.Log))

	// 健康检查
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	basePath := d.BasePath
	if basePath == "" {
		basePath = "/api"
	}
	var reg Registry
	reg.Register(d.Modules...)
	reg.MountAll(ez.New(r.Group(basePath), d.Parser, d.Log))

	return r
}
