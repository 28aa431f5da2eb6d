package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dippreneurlab/new-salt/internal/domain"
	"github.com/dippreneurlab/new-salt/internal/http/middleware"
	"github.com/dippreneurlab/new-salt/internal/service"
)

// Quotes exposes the owner-scoped quote resources.
type Quotes struct {
	Service *service.QuoteService
}

func NewQuotes(svc *service.QuoteService) *Quotes {
	return &Quotes{Service: svc}
}

func (h *Quotes) List(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	quotes, err := h.Service.GetQuotesForUser(c.Request.Context(), id.SubjectID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quotes": quotes})
}

// Replace reconciles the caller's entire quote set against the supplied
// list. An empty list clears the set.
func (h *Quotes) Replace(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Quotes []domain.QuoteDocument `json:"quotes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	if err := h.Service.ReplaceQuotes(c.Request.Context(), id.SubjectID, req.Quotes, id.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "count": len(req.Quotes)})
}

func (h *Quotes) Get(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	quote, err := h.Service.GetQuote(c.Request.Context(), id.SubjectID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": quote})
}

func (h *Quotes) Upsert(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Quote domain.QuoteDocument `json:"quote"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Quote == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	quoteID := c.Param("id")
	if err := h.Service.UpsertQuote(c.Request.Context(), id.SubjectID, quoteID, req.Quote, id.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": req.Quote})
}

func (h *Quotes) Delete(c *gin.Context) {
	id, ok := middleware.GetIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.Service.DeleteQuote(c.Request.Context(), id.SubjectID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
