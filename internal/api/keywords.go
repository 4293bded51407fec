package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/socio-analytics/opp-radar/internal/db"
	"github.com/socio-analytics/opp-radar/internal/models"
)

func (s *Server) handleListKeywords(c echo.Context) error {
	params := db.KeywordListParams{
		Type:     strings.ToUpper(c.QueryParam("type")),
		Tier:     strings.ToUpper(c.QueryParam("tier")),
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
	}
	if v := c.QueryParam("isActive"); v != "" {
		active := v == "true"
		params.IsActive = &active
	}

	kws, err := s.Store.ListKeywords(c.Request().Context(), params)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"keywords": kws, "total": len(kws)})
}

func (s *Server) handleGetKeyword(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid keyword id"})
	}

	detail, err := s.Store.GetKeyword(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Keyword not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, detail)
}

func (s *Server) handleKeywordStats(c echo.Context) error {
	stats, err := s.Store.KeywordStatsSummary(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleKeywordCategories(c echo.Context) error {
	categories, err := s.Store.ListKeywordCategories(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"categories": categories})
}

type keywordRequest struct {
	Term     *string `json:"term"`
	Type     *string `json:"type"`
	Tier     *string `json:"tier"`
	Category *string `json:"category"`
	IsActive *bool   `json:"isActive"`
}

func validKeywordType(t string) bool {
	return t == string(models.KeywordInclude) || t == string(models.KeywordExclude)
}

func validKeywordTier(t string) bool {
	switch models.KeywordTier(t) {
	case models.KeywordTierHigh, models.KeywordTierMedium, models.KeywordTierLow:
		return true
	}
	return false
}

func (s *Server) handleCreateKeyword(c echo.Context) error {
	var req keywordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	if req.Term == nil || strings.TrimSpace(*req.Term) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "term is required"})
	}
	if req.Type == nil || !validKeywordType(*req.Type) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "type must be INCLUDE or EXCLUDE"})
	}

	in := db.KeywordInput{
		Term:     *req.Term,
		Type:     models.KeywordType(*req.Type),
		IsActive: req.IsActive,
	}
	if req.Tier != nil {
		if !validKeywordTier(*req.Tier) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "tier must be HIGH, MEDIUM or LOW"})
		}
		in.Tier = models.KeywordTier(*req.Tier)
	}
	if req.Category != nil {
		in.Category = *req.Category
	}

	kw, err := s.Store.CreateKeyword(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateTerm) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "Keyword term already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, kw)
}

func (s *Server) handleUpdateKeyword(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid keyword id"})
	}

	var req keywordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	var upd db.KeywordUpdate
	if req.Term != nil {
		if strings.TrimSpace(*req.Term) == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "term cannot be empty"})
		}
		upd.Term = req.Term
	}
	if req.Type != nil {
		if !validKeywordType(*req.Type) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "type must be INCLUDE or EXCLUDE"})
		}
		t := models.KeywordType(*req.Type)
		upd.Type = &t
	}
	if req.Tier != nil {
		if !validKeywordTier(*req.Tier) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "tier must be HIGH, MEDIUM or LOW"})
		}
		t := models.KeywordTier(*req.Tier)
		upd.Tier = &t
	}
	upd.Category = req.Category
	upd.IsActive = req.IsActive

	kw, err := s.Store.UpdateKeyword(c.Request().Context(), id, upd)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Keyword not found"})
		}
		if errors.Is(err, db.ErrDuplicateTerm) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "Keyword term already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, kw)
}

func (s *Server) handleDeleteKeyword(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid keyword id"})
	}

	if err := s.Store.DeleteKeyword(c.Request().Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Keyword not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
