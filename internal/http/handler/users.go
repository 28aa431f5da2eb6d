package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dippreneurlab/new-salt/internal/domain"
	"github.com/dippreneurlab/new-salt/internal/service"
)

// Users exposes the admin-only user directory.
type Users struct {
	Directory *service.DirectoryService
}

func NewUsers(directory *service.DirectoryService) *Users {
	return &Users{Directory: directory}
}

func (h *Users) List(c *gin.Context) {
	users, err := h.Directory.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if users == nil {
		users = []domain.ManagedUser{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *Users) Create(c *gin.Context) {
	var req service.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	user, err := h.Directory.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *Users) UpdateRole(c *gin.Context) {
	var req struct {
		UID  string `json:"uid"`
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UID == "" || req.Role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uid and role are required"})
		return
	}

	user, err := h.Directory.UpdateRole(c.Request.Context(), req.UID, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// SetRole is the legacy role-update endpoint; it acknowledges without
// echoing the full record.
func (h *Users) SetRole(c *gin.Context) {
	var req struct {
		UID  string `json:"uid"`
		Role string `json:"role"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UID == "" || req.Role == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uid and role are required"})
		return
	}

	if _, err := h.Directory.UpdateRole(c.Request.Context(), req.UID, req.Role); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "uid": req.UID, "role": req.Role})
}

func (h *Users) Delete(c *gin.Context) {
	var req struct {
		UID string `json:"uid"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.UID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uid is required"})
		return
	}

	if err := h.Directory.Delete(c.Request.Context(), req.UID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
