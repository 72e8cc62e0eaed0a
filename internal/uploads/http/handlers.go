package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	httpapi "github.com/filmschedule/filmschedule-backend/internal/api/http"
	"github.com/filmschedule/filmschedule-backend/internal/apperr"
	"github.com/filmschedule/filmschedule-backend/internal/uploads"
)

// Handler bundles the dependencies for upload and media endpoints.
type Handler struct {
	logos *uploads.LogoService
}

func New(logos *uploads.LogoService) *Handler {
	return &Handler{logos: logos}
}

// Register attaches upload routes (POST /uploads/logo) and media routes
// (GET /media/:filename) to rg.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/uploads/logo", h.uploadLogo)
	rg.GET("/media/:filename", h.media)
}

func (h *Handler) uploadLogo(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		httpapi.RespondError(c, "upload logo", apperr.Validation("file is required"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		httpapi.RespondError(c, "upload logo", apperr.Internal("failed to open upload", err))
		return
	}
	defer f.Close()

	res, err := h.logos.Upload(c.Request.Context(), fh.Header.Get("Content-Type"), f)
	if err != nil {
		httpapi.RespondError(c, "upload logo", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "url": res.URL, "filename": res.Filename})
}

func (h *Handler) media(c *gin.Context) {
	obj, err := h.logos.Open(c.Request.Context(), c.Param("filename"))
	if err != nil {
		httpapi.RespondError(c, "serve media", err)
		return
	}
	defer obj.Body.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
}
