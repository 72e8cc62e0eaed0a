package http

import "github.com/gin-gonic/gin"

// Register attaches project routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("", h.list)
	rg.POST("/save", h.save)
	rg.POST("/export/csv", h.exportPostedCSV)

	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
	rg.POST("/:id/archive", h.toggleArchive)
	rg.POST("/:id/duplicate", h.duplicate)
	rg.GET("/:id/export.csv", h.exportCSV)
	rg.GET("/:id/print", h.print)
}
