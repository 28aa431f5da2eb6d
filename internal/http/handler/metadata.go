package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dippreneurlab/new-salt/internal/service"
)

// Metadata serves the read-only pipeline lookup tables.
type Metadata struct {
	Service *service.MetadataService
}

func NewMetadata(svc *service.MetadataService) *Metadata {
	return &Metadata{Service: svc}
}

func (h *Metadata) Pipeline(c *gin.Context) {
	value, err := h.Service.Pipeline(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", value)
}
