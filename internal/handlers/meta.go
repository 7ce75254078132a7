package handlers

import (
	"context"
	"time"

	"github.com/dimitrije/hydra-collections/internal/middleware"
	"github.com/dimitrije/hydra-collections/internal/models"
	"github.com/dimitrije/hydra-collections/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type MetaHandler struct {
	store Pinger
}

func NewMetaHandler(store Pinger) *MetaHandler {
	return &MetaHandler{store: store}
}

func (h *MetaHandler) Health(c *drift.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		_ = c.JSON(503, map[string]string{"status": "unavailable"})
		return
	}

	_ = c.JSON(200, map[string]string{"status": "ok"})
}

// Terms lists the collection fields shown to readers and offered to editors.
func (h *MetaHandler) Terms(c *drift.Context) {
	var col models.Collection
	_ = c.JSON(200, dto.TermsResponse{
		Display: termNames(col.TermsForDisplay()),
		Editing: termNames(col.TermsForEditing()),
	})
}

func (h *MetaHandler) Me(c *drift.Context) {
	principal := middleware.GetPrincipal(c)
	if principal.ID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	_ = c.JSON(200, dto.PrincipalResponse{ID: principal.ID, Email: principal.Email})
}

func termNames(terms []models.Term) []string {
	names := make([]string, len(terms))
	for i, t := range terms {
		names[i] = string(t)
	}
	return names
}
