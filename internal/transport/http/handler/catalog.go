package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"perfume-catalog/internal/core/auth"
	"perfume-catalog/internal/domain"
	"perfume-catalog/internal/service"
	"perfume-catalog/internal/transport/http/ez"
)

var (
	readers = auth.RequiresAnyOf(domain.RoleAdmin, domain.RoleUser)
	admins  = auth.RequiresAnyOf(domain.RoleAdmin)
)

type none struct{}

type brandQ struct {
	CategoryID uint `form:"categoryId"`
}

type perfumeQ struct {
	BrandID    uint `form:"brandId"`
	CategoryID uint `form:"categoryId"`
}

type CatalogHandler struct {
	Categories *service.CategoryService
	Brands     *service.BrandService
	Perfumes   *service.PerfumeService
}

func (h *CatalogHandler) Priority() int { return 10 }

func (h *CatalogHandler) Mount(e ez.EZ) {
	h.mountReads(e, readers)
	h.mountReads(e.Group("/public"), auth.Public)
	h.mountCategoryWrites(e)
	h.mountBrandWrites(e)
	h.mountPerfumeWrites(e)

	ez.RegisterAction(e, ez.Action[service.SearchInput, []service.PerfumeView]{
		Method: http.MethodPost, Path: "/search", Binder: ez.BindJSON, Access: readers,
		Handler: func(c *gin.Context, in *service.SearchInput) ([]service.PerfumeView, error) {
			return h.Perfumes.Search(c.Request.Context(), *in)
		},
	})
}

// mountReads 受保护读接口与 /public 下的公开镜像共用
func (h *CatalogHandler) mountReads(e ez.EZ, access auth.Access) {
	ez.RegisterAction(e, ez.Action[none, []domain.Category]{
		Method: http.MethodGet, Path: "/categories", Binder: ez.BindNone, Access: access,
		Handler: func(c *gin.Context, _ *none) ([]domain.Category, error) {
			return h.Categories.List(c.Request.Context())
		},
	})
	ez.RegisterAction(e, ez.Action[none, *domain.Category]{
		Method: http.MethodGet, Path: "/categories/:id", Binder: ez.BindNone, Access: access,
		Handler: func(c *gin.Context, _ *none) (*domain.Category, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Categories.Get(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(e, ez.Action[brandQ, []service.BrandView]{
		Method: http.MethodGet, Path: "/brands", Binder: ez.BindQuery, Access: access,
		Handler: func(c *gin.Context, in *brandQ) ([]service.BrandView, error) {
			return h.Brands.List(c.Request.Context(), in.CategoryID)
		},
	})
	ez.RegisterAction(e, ez.Action[none, service.BrandView]{
		Method: http.MethodGet, Path: "/brands/:id", Binder: ez.BindNone, Access: access,
		Handler: func(c *gin.Context, _ *none) (service.BrandView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.BrandView{}, err
			}
			return h.Brands.Get(c.Request.Context(), id)
		},
	})

	ez.RegisterAction(e, ez.Action[perfumeQ, []service.PerfumeView]{
		Method: http.MethodGet, Path: "/perfumes", Binder: ez.BindQuery, Access: access,
		Handler: func(c *gin.Context, in *perfumeQ) ([]service.PerfumeView, error) {
			return h.Perfumes.List(c.Request.Context(), in.BrandID, in.CategoryID)
		},
	})
	ez.RegisterAction(e, ez.Action[none, service.PerfumeView]{
		Method: http.MethodGet, Path: "/perfumes/:id", Binder: ez.BindNone, Access: access,
		Handler: func(c *gin.Context, _ *none) (service.PerfumeView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.PerfumeView{}, err
			}
			return h.Perfumes.Get(c.Request.Context(), id)
		},
	})
	ez.RegisterAction(e, ez.Action[service.SearchInput, []service.PerfumeView]{
		Method: http.MethodPost, Path: "/perfumes/search", Binder: ez.BindJSON, Access: access,
		Handler: func(c *gin.Context, in *service.SearchInput) ([]service.PerfumeView, error) {
			return h.Perfumes.Search(c.Request.Context(), *in)
		},
	})
}

func (h *CatalogHandler) mountCategoryWrites(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[service.CategoryInput, *domain.Category]{
		Method: http.MethodPost, Path: "/categories", Binder: ez.BindJSON, Access: admins, Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.CategoryInput) (*domain.Category, error) {
			return h.Categories.Create(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(e, ez.Action[service.CategoryInput, *domain.Category]{
		Method: http.MethodPut, Path: "/categories/:id", Binder: ez.BindJSON, Access: admins,
		Handler: func(c *gin.Context, in *service.CategoryInput) (*domain.Category, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return h.Categories.Update(c.Request.Context(), id, *in)
		},
	})
	ez.RegisterAction(e, ez.Action[none, none]{
		Method: http.MethodDelete, Path: "/categories/:id", Binder: ez.BindNone, Access: admins, Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ *none) (none, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return none{}, err
			}
			return none{}, h.Categories.Delete(c.Request.Context(), id)
		},
	})
}

func (h *CatalogHandler) mountBrandWrites(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[service.BrandInput, service.BrandView]{
		Method: http.MethodPost, Path: "/brands", Binder: ez.BindJSON, Access: admins, Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.BrandInput) (service.BrandView, error) {
			return h.Brands.Create(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(e, ez.Action[service.BrandInput, service.BrandView]{
		Method: http.MethodPut, Path: "/brands/:id", Binder: ez.BindJSON, Access: admins,
		Handler: func(c *gin.Context, in *service.BrandInput) (service.BrandView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.BrandView{}, err
			}
			return h.Brands.Update(c.Request.Context(), id, *in)
		},
	})
	ez.RegisterAction(e, ez.Action[none, none]{
		Method: http.MethodDelete, Path: "/brands/:id", Binder: ez.BindNone, Access: admins, Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ *none) (none, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return none{}, err
			}
			return none{}, h.Brands.Delete(c.Request.Context(), id)
		},
	})
}

func (h *CatalogHandler) mountPerfumeWrites(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[service.PerfumeInput, service.PerfumeView]{
		Method: http.MethodPost, Path: "/perfumes", Binder: ez.BindJSON, Access: admins, Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.PerfumeInput) (service.PerfumeView, error) {
			return h.Perfumes.Create(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(e, ez.Action[service.PerfumeInput, service.PerfumeView]{
		Method: http.MethodPut, Path: "/perfumes/:id", Binder: ez.BindJSON, Access: admins,
		Handler: func(c *gin.Context, in *service.PerfumeInput) (service.PerfumeView, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return service.PerfumeView{}, err
			}
			return h.Perfumes.Update(c.Request.Context(), id, *in)
		},
	})
	ez.RegisterAction(e, ez.Action[none, none]{
		Method: http.MethodDelete, Path: "/perfumes/:id", Binder: ez.BindNone, Access: admins, Status: http.StatusNoContent,
		Handler: func(c *gin.Context, _ *none) (none, error) {
			id, err := ez.ParamID(c, "id")
			if err != nil {
				return none{}, err
			}
			return none{}, h.Perfumes.Delete(c.Request.Context(), id)
		},
	})
}
