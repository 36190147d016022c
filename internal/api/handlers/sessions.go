package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/pokedex/backend/internal/models"
	"github.com/codyseavey/pokedex/backend/internal/services"
)

type SessionHandler struct {
	sessions *services.SessionStore
}

func NewSessionHandler(sessions *services.SessionStore) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// CreateSession starts a session and returns its first page
func (h *SessionHandler) CreateSession(c *gin.Context) {
	s, snap, err := h.sessions.Create()
	if err != nil && !errors.Is(err, services.ErrSuperseded) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": s.ID, "snapshot": snap})
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Snapshot())
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if !h.sessions.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) Search(c *gin.Context) {
	var req struct {
		Query string `json:"q"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.trigger(c, func(s *services.ViewSession) (models.Snapshot, error) {
		return s.Search(req.Query)
	})
}

func (h *SessionHandler) ToggleType(c *gin.Context) {
	var req struct {
		Type string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.trigger(c, func(s *services.ViewSession) (models.Snapshot, error) {
		return s.ToggleType(req.Type)
	})
}

func (h *SessionHandler) ToggleGeneration(c *gin.Context) {
	var req struct {
		Generation int `json:"generation" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.trigger(c, func(s *services.ViewSession) (models.Snapshot, error) {
		return s.ToggleGeneration(req.Generation)
	})
}

func (h *SessionHandler) ToggleRarity(c *gin.Context) {
	var req struct {
		Rarity string `json:"rarity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	r, ok := models.ParseRarity(req.Rarity)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown rarity"})
		return
	}
	h.trigger(c, func(s *services.ViewSession) (models.Snapshot, error) {
		return s.ToggleRarity(r)
	})
}

func (h *SessionHandler) ClearFilters(c *gin.Context) {
	h.trigger(c, func(s *services.ViewSession) (models.Snapshot, error) {
		return s.ClearFilters()
	})
}

func (h *SessionHandler) GoToPage(c *gin.Context) {
	var req struct {
		Page *int `json:"page" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.trigger(c, func(s *services.ViewSession) (models.Snapshot, error) {
		return s.Go(*req.Page)
	})
}

func (h *SessionHandler) Reload(c *gin.Context) {
	h.trigger(c, func(s *services.ViewSession) (models.Snapshot, error) {
		return s.Reload()
	})
}

func (h *SessionHandler) OpenDetail(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.trigger(c, func(s *services.ViewSession) (models.Snapshot, error) {
		return s.OpenDetail(req.Name)
	})
}

func (h *SessionHandler) CloseDetail(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.CloseDetail())
}

// trigger runs fn against the session named in the path. A superseded
// trigger answers 409 with the snapshot of the request that replaced it.
func (h *SessionHandler) trigger(c *gin.Context, fn func(*services.ViewSession) (models.Snapshot, error)) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	snap, err := fn(s)
	if errors.Is(err, services.ErrSuperseded) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "snapshot": snap})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *SessionHandler) session(c *gin.Context) (*services.ViewSession, bool) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	return s, true
}
