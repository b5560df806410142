package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"perfume-catalog/internal/domain"
	"perfume-catalog/internal/service"
	"perfume-catalog/internal/transport/http/ez"
	mdw "perfume-catalog/internal/transport/http/middleware"
)

type UserHandler struct {
	Users     *service.UserService
	Dashboard *service.DashboardService
}

func (h *UserHandler) Priority() int { return 20 }

func (h *UserHandler) Mount(e ez.EZ) {
	h.mountAdmin(e.Group("/admin"))
	h.mountSelf(e)
}

func (h *UserHandler) mountAdmin(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[none, []domain.User]{
		Method: http.MethodGet, Path: "/users", Binder: ez.BindNone, Access: admins,
		Handler: func(c *gin.Context, _ *none) ([]domain.User, error) {
			return h.Users.List(c.Request.Context())
		},
	})
	ez.RegisterAction(e, ez.Action[none, *domain.User]{
		Method: http.MethodGet, Path: "/users/:id", Binder: ez.BindNone, Access: admins,
		Handler: func(c *gin.Context, _ *none) (*domain.User, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Users.Get(c.Request.Context(), id)
		},
	})
	ez.RegisterAction(e, ez.Action[service.UserInput, *domain.User]{
		Method: http.MethodPost, Path: "/users", Binder: ez.BindJSON, Access: admins, Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.UserInput) (*domain.User, error) {
			return h.Users.Create(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(e, ez.Action[service.UserInput, *domain.User]{
		Method: http.MethodPut, Path: "/users/:id", Binder: ez.BindJSON, Access: admins,
		Handler: func(c *gin.Context, in *service.UserInput) (*domain.User, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Users.Update(c.Request.Context(), id, *in)
		},
	})
	ez.RegisterAction(e, ez.Action[none, none]{
		Method: http.MethodDelete, Path: "/users/:id", Binder: ez.BindNone, Access: admins, Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ *none) (none, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return none{}, err
			}
			if cl, ok := mdw.ClaimsFrom(c); ok && cl.UID == id {
				return none{}, ez.BadRequest("cannot delete your own account")
			}
			return none{}, h.Users.Delete(c.Request.Context(), id)
		},
	})

	for path, enabled := range map[string]bool{"/users/:id/enable": true, "/users/:id/disable": false} {
		enabled := enabled
		ez.RegisterAction(e, ez.Action[none, *domain.User]{
			Method: http.MethodPost, Path: path, Binder: ez.BindNone, Access: admins,
			Handler: func(c *gin.Context, _ *none) (*domain.User, error) {
				id, err := ez.ParamID(c, "id")
				if err != nil {
					return nil, err
				}
				return h.Users.SetEnabled(c.Request.Context(), id, enabled)
			},
		})
	}

	ez.RegisterAction(e, ez.Action[service.ResetPasswordInput, gin.H]{
		Method: http.MethodPost, Path: "/users/:id/password", Binder: ez.BindJSON, Access: admins,
		Handler: func(c *gin.Context, in *service.ResetPasswordInput) (gin.H, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			if err := h.Users.ResetPassword(c.Request.Context(), id, *in); err != nil {
				return nil, err
			}
			return gin.H{"success": true, "message": "Password reset successfully"}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[none, service.Stats]{
		Method: http.MethodGet, Path: "/dashboard", Binder: ez.BindNone, Access: admins,
		Handler: func(c *gin.Context, _ *none) (service.Stats, error) {
			return h.Dashboard.Stats(c.Request.Context())
		},
	})
}

// mountSelf 当前登录用户的资料与密码
func (h *UserHandler) mountSelf(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[none, *domain.User]{
		Method: http.MethodGet, Path: "/me", Binder: ez.BindNone, Access: readers,
		Handler: func(c *gin.Context, _ *none) (*domain.User, error) {
			cl, _ := mdw.ClaimsFrom(c)
			return h.Users.Get(c.Request.Context(), cl.UID)
		},
	})
	ez.RegisterAction(e, ez.Action[service.ProfileInput, *domain.User]{
		Method: http.MethodPut, Path: "/me", Binder: ez.BindJSON, Access: readers,
		Handler: func(c *gin.Context, in *service.ProfileInput) (*domain.User, error) {
			cl, _ := mdw.ClaimsFrom(c)
			return h.Users.UpdateProfile(c.Request.Context(), cl.UID, *in)
		},
	})
	ez.RegisterAction(e, ez.Action[service.ChangePasswordInput, gin.H]{
		Method: http.MethodPut, Path: "/me/password", Binder: ez.BindJSON, Access: readers,
		Handler: func(c *gin.Context, in *service.ChangePasswordInput) (gin.H, error) {
			cl, _ := mdw.ClaimsFrom(c)
			if err := h.Users.ChangePassword(c.Request.Context(), cl.UID, *in); err != nil {
				return nil, err
			}
			return gin.H{"success": true, "message": "Password changed successfully"}, nil
		},
	})
}
