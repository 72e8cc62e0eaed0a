package http

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	httpapi "github.com/filmschedule/filmschedule-backend/internal/api/http"
	"github.com/filmschedule/filmschedule-backend/internal/apperr"
	"github.com/filmschedule/filmschedule-backend/internal/projects/domain"
	"github.com/filmschedule/filmschedule-backend/internal/projects/export"
)

func (h *Handler) list(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httpapi.RespondError(c, "list projects", apperr.Validation("include_archived must be a boolean"))
		return
	}

	res, err := h.svc.List(c.Request.Context(), q.IncludeArchived)
	if err != nil {
		httpapi.RespondError(c, "list projects", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) save(c *gin.Context) {
	in, ok := bindProject(c)
	if !ok {
		return
	}

	p, err := h.svc.Save(c.Request.Context(), in)
	if err != nil {
		httpapi.RespondError(c, "save project", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.RespondError(c, "get project", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) update(c *gin.Context) {
	in, ok := bindProject(c)
	if !ok {
		return
	}

	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		httpapi.RespondError(c, "update project", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		httpapi.RespondError(c, "delete project", err)
		return
	}
	c.JSON(http.StatusOK, deleteResp{Success: true, Message: "Project deleted"})
}

func (h *Handler) toggleArchive(c *gin.Context) {
	res, err := h.svc.ToggleArchive(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.RespondError(c, "toggle archive", err)
		return
	}
	c.JSON(http.StatusOK, toggleResp{Success: true, Archived: res.Archived, Message: res.Message})
}

func (h *Handler) duplicate(c *gin.Context) {
	p, err := h.svc.Duplicate(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.RespondError(c, "duplicate project", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) exportCSV(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.RespondError(c, "export project", err)
		return
	}
	writeCSV(c, p)
}

// exportPostedCSV renders the posted project without storing it.
func (h *Handler) exportPostedCSV(c *gin.Context) {
	in, ok := bindProject(c)
	if !ok {
		return
	}
	writeCSV(c, in)
}

func (h *Handler) print(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		httpapi.RespondError(c, "print project", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WritePrintHTML(&buf, p, p.LogoURL); err != nil {
		httpapi.RespondError(c, "print project", apperr.Internal("failed to render print view", err))
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func bindProject(c *gin.Context) (*domain.Project, bool) {
	var in domain.Project
	if err := c.ShouldBindJSON(&in); err != nil {
		httpapi.RespondBindError(c, err)
		return nil, false
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		httpapi.RespondError(c, "bind project", apperr.Validation("name is required"))
		return nil, false
	}
	return &in, true
}

func writeCSV(c *gin.Context, p *domain.Project) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, p); err != nil {
		httpapi.RespondError(c, "export project", apperr.Internal("failed to render csv", err))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(p, ".csv")+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
