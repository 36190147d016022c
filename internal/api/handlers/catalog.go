package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codyseavey/pokedex/backend/internal/models"
	"github.com/codyseavey/pokedex/backend/internal/services"
)

type CatalogHandler struct {
	browser *services.Browser
	details *services.DetailLoader
}

func NewCatalogHandler(browser *services.Browser, details *services.DetailLoader) *CatalogHandler {
	return &CatalogHandler{
		browser: browser,
		details: details,
	}
}

// GetTypes returns the type filter chips in display order
func (h *CatalogHandler) GetTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"types": h.browser.TypeOptions(c.Request.Context())})
}

func (h *CatalogHandler) GetGenerations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"generations": services.GenerationRanges})
}

func (h *CatalogHandler) GetRarities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rarities": models.Rarities})
}

// ListPokemon builds one enriched page for the filters in the query string
// without keeping any state between calls.
func (h *CatalogHandler) ListPokemon(c *gin.Context) {
	f, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page, err := h.browser.Load(c.Request.Context(), f)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}

	c.JSON(http.StatusOK, models.Snapshot{
		Mode:       models.ModeOf(f),
		Filter:     f,
		Page:       page,
		TotalPages: page.TotalPages(h.browser.PageSize()),
		Detail:     models.DetailView{Evolution: []models.EvoStage{}, Moves: []models.MoveBasic{}},
	})
}

func (h *CatalogHandler) GetPokemon(c *gin.Context) {
	rec, ok := h.record(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"record":     rec,
		"image_url":  rec.ImageURL(),
		"base_stats": rec.BaseStats(),
		"cry_url":    rec.CryURL("latest"),
	})
}

func (h *CatalogHandler) GetEvolution(c *gin.Context) {
	stages := h.details.Evolution(c.Request.Context(), c.Param("key"))
	c.JSON(http.StatusOK, gin.H{"stages": stages})
}

func (h *CatalogHandler) GetMoves(c *gin.Context) {
	rec, ok := h.record(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"moves": h.details.Moves(c.Request.Context(), rec)})
}

func (h *CatalogHandler) record(c *gin.Context) (*models.DetailRecord, bool) {
	rec, err := h.details.Record(c.Request.Context(), c.Param("key"))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "pokemon not found"})
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return nil, false
	}
	return rec, true
}

func filterFromQuery(c *gin.Context) (models.FilterState, error) {
	f := models.FilterState{
		Query:        c.Query("q"),
		SelectedType: strings.ToLower(strings.TrimSpace(c.Query("type"))),
		Page:         1,
	}

	if v := c.Query("gen"); v != "" {
		gen, err := strconv.Atoi(v)
		if err != nil || gen < 0 {
			return f, fmt.Errorf("invalid gen %q", v)
		}
		f.SelectedGen = gen
	}

	if v := c.Query("rarity"); v != "" {
		r, ok := models.ParseRarity(v)
		if !ok {
			return f, fmt.Errorf("invalid rarity %q", v)
		}
		f.SelectedRarity = r
	}

	if v := c.Query("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 || p > models.MaxPage {
			return f, fmt.Errorf("invalid page %q", v)
		}
		f.Page = p
	}

	return f, nil
}
