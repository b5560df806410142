package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"perfume-catalog/internal/core/auth"
	"perfume-catalog/internal/domain"
	"perfume-catalog/internal/service"
	"perfume-catalog/internal/transport/http/ez"
)

const invalidCredentialsMsg = "Invalid username or password"

type AuthHandler struct {
	Auth *service.AuthService
	// Throttle 登录/注册限流，可为空
	Throttle gin.HandlerFunc
}

func (h *AuthHandler) Priority() int { return 0 }

func (h *AuthHandler) Mount(e ez.EZ) {
	g := e.Group("/auth")
	limited := g
	if h.Throttle != nil {
		limited = g.Group("", h.Throttle)
	}

	ez.RegisterAction(limited, ez.Action[service.LoginInput, service.LoginResult]{
		Method: http.MethodPost, Path: "/login", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.LoginInput) (service.LoginResult, error) {
			res, err := h.Auth.Login(c.Request.Context(), *in)
			if errors.Is(err, domain.ErrInvalidCredentials) {
				return res, ez.BadRequest(invalidCredentialsMsg)
			}
			if errors.Is(err, domain.ErrAccountDisabled) {
				return res, &ez.AErr{Code: http.StatusForbidden, Msg: "Account is disabled", Err: err}
			}
			return res, err
		},
	})

	ez.RegisterAction(limited, ez.Action[service.RegisterInput, service.LoginResult]{
		Method: http.MethodPost, Path: "/register", Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.RegisterInput) (service.LoginResult, error) {
			res, err := h.Auth.Register(c.Request.Context(), *in)
			switch {
			case errors.Is(err, domain.ErrDuplicateUsername):
				return res, ez.BadRequest("Username is already taken")
			case errors.Is(err, domain.ErrDuplicateEmail):
				return res, ez.BadRequest("Email is already in use")
			}
			return res, err
		},
	})

	// 无效或过期的 token 也回 200 false，不能让 Guard 提前 401
	ez.RegisterAction(g, ez.Action[none, bool]{
		Method: http.MethodGet, Path: "/validate", Binder: ez.BindNone, Access: auth.Unchecked,
		Handler: func(c *gin.Context, _ *none) (bool, error) {
			tok := auth.BearerToken(c.GetHeader("Authorization"))
			return tok != "" && h.Auth.Validate(tok), nil
		},
	})
}
