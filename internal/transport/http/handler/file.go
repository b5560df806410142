package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"perfume-catalog/internal/service"
	"perfume-catalog/internal/transport/http/ez"
)

type FileHandler struct {
	Files *service.FileService
}

func (h *FileHandler) Priority() int { return 30 }

func (h *FileHandler) Mount(e ez.EZ) {
	ez.RegisterAction(e, ez.Action[none, service.UploadResult]{
		Method: http.MethodPost, Path: "/admin/upload", Binder: ez.BindNone, Access: admins,
		Handler: func(c *gin.Context, _ *none) (service.UploadResult, error) {
			fh, err := c.FormFile("file")
			if err != nil {
				return service.UploadResult{}, ez.BadRequest("Please select a file to upload")
			}
			f, err := fh.Open()
			if err != nil {
				return service.UploadResult{}, err
			}
			defer f.Close()
			return h.Files.Upload(c.Request.Context(), fh.Filename, fh.Header.Get("Content-Type"), f)
		},
	})

	ez.RegisterAction(e, ez.Action[none, none]{
		Method: http.MethodGet, Path: "/files/:filename", Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *none) (none, error) {
			fc, err := h.Files.Open(c.Request.Context(), c.Param("filename"))
			if err != nil {
				return none{}, err
			}
			defer fc.Close()
			c.Header("Content-Type", fc.ContentType)
			c.Header("X-Content-Type-Options", "nosniff")
			c.Header("Content-Disposition", `inline; filename="`+fc.Name+`"`)
			http.ServeContent(c.Writer, c.Request, fc.Name, fc.ModTime, fc)
			return none{}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[none, gin.H]{
		Method: http.MethodDelete, Path: "/admin/files/:filename", Binder: ez.BindNone, Access: admins,
		Handler: func(c *gin.Context, _ *none) (gin.H, error) {
			if err := h.Files.Delete(c.Request.Context(), c.Param("filename")); err != nil {
				return nil, err
			}
			return gin.H{"success": true, "message": "File deleted successfully"}, nil
		},
	})
}
