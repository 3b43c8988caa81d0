package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
)

// problem is the JSON error body returned for every failed request
type problem struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// respondError maps domain errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	var (
		notFound   *shared.NotFoundError
		policyErr  *shared.PolicyError
		capacity   *shared.CapacityExhaustedError
		noMapping  *shared.NoMappingError
		conflict   *shared.ConflictError
		forbidden  *shared.ForbiddenError
		validation *shared.ValidationError
	)

	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, problem{Type: "not_found", Error: err.Error()})
	case errors.As(err, &capacity):
		c.JSON(http.StatusConflict, problem{Type: "capacity_exhausted", Error: err.Error()})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, problem{Type: "conflict", Error: err.Error()})
	case errors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, problem{Type: "forbidden", Error: err.Error()})
	case errors.As(err, &policyErr):
		c.JSON(http.StatusUnprocessableEntity, problem{Type: "policy", Error: err.Error()})
	case errors.As(err, &noMapping):
		c.JSON(http.StatusUnprocessableEntity, problem{Type: "no_mapping", Error: err.Error()})
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, problem{Type: "validation", Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, problem{Type: "internal", Error: err.Error()})
	}
}

// respondBadRequest reports a malformed request body or parameter
func respondBadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, problem{Type: "validation", Error: err.Error()})
}
