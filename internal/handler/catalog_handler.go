package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/atelier-nord/intake-api/internal/catalog"
	"github.com/atelier-nord/intake-api/internal/dto"
	"github.com/atelier-nord/intake-api/pkg/response"
)

// CatalogHandler exposes the question catalog, mostly for clients that
// want to render an overview before starting a session.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

// NewCatalogHandler builds a new handler.
func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

// List godoc
// @Summary List all questions in catalog order
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /questions [get]
func (h *CatalogHandler) List(c *gin.Context) {
	questions := h.catalog.Questions()
	views := make([]dto.QuestionView, 0, len(questions))
	for _, q := range questions {
		views = append(views, dto.QuestionView{
			ID:          q.ID,
			Prompt:      q.Prompt,
			Description: q.Description,
			Kind:        string(q.Kind),
			Required:    q.Required,
			Constraints: q.Constraints,
		})
	}
	response.JSON(c, http.StatusOK, views, map[string]interface{}{
		"version": h.catalog.Version(),
		"total":   len(views),
	})
}
