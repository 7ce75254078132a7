package handlers

import (
	"errors"
	"net/http"

	"github.com/dimitrije/hydra-collections/internal/ability"
	"github.com/dimitrije/hydra-collections/internal/logger"
	"github.com/dimitrije/hydra-collections/internal/services"
	"github.com/dimitrije/hydra-collections/internal/store"
	"github.com/m1z23r/drift/pkg/drift"
	"go.uber.org/zap"
)

// respondError maps service errors onto HTTP statuses. notFound is the
// message used when the addressed object does not exist.
func respondError(c *drift.Context, err error, notFound string) {
	switch {
	case errors.Is(err, ability.ErrForbidden):
		c.Forbidden("not permitted")
	case errors.Is(err, services.ErrInvalidMember):
		c.BadRequest(err.Error())
	case errors.Is(err, services.ErrNoFieldsToUpdate):
		c.BadRequest("no fields to update")
	case errors.Is(err, store.ErrObjectNotFound):
		c.NotFound(notFound)
	case errors.Is(err, store.ErrUnavailable):
		_ = c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "object store unavailable"})
	default:
		logger.FromContext(c.Request.Context()).Error("request failed", zap.Error(err))
		c.InternalServerError("internal server error")
	}
}
