package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dippreneurlab/new-salt/internal/http/middleware"
	"github.com/dippreneurlab/new-salt/internal/service"
)

// Storage exposes the per-user key-value resource.
type Storage struct {
	Service *service.StorageService
}

func NewStorage(svc *service.StorageService) *Storage {
	return &Storage{Service: svc}
}

func (h *Storage) Get(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	key := c.Param("key")
	value, err := h.Service.Get(c.Request.Context(), id.SubjectID, key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

func (h *Storage) Set(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Value json.RawMessage `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	key := c.Param("key")
	saved, err := h.Service.Set(c.Request.Context(), id.SubjectID, id.Email, key, req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": saved})
}

func (h *Storage) Delete(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.Service.Delete(c.Request.Context(), id.SubjectID, c.Param("key")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
