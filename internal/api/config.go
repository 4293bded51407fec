package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/socio-analytics/opp-radar/internal/db"
)

func (s *Server) handleGetScoringConfig(c echo.Context) error {
	cfg, err := s.Store.GetScoringConfig(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, cfg)
}

type scoringConfigRequest struct {
	BudgetWeight    *int     `json:"budgetWeight"`
	SectorWeight    *int     `json:"sectorWeight"`
	GeographyWeight *int     `json:"geographyWeight"`
	TimingWeight    *int     `json:"timingWeight"`
	UtahMultiplier  *float64 `json:"utahMultiplier"`
}

func (s *Server) handleUpdateScoringConfig(c echo.Context) error {
	var req scoringConfigRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	for _, w := range []*int{req.BudgetWeight, req.SectorWeight, req.GeographyWeight, req.TimingWeight} {
		if w != nil && (*w < 0 || *w > 50) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "weights must be between 0 and 50"})
		}
	}
	if req.UtahMultiplier != nil && (*req.UtahMultiplier < 1.0 || *req.UtahMultiplier > 3.0) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "utahMultiplier must be between 1.0 and 3.0"})
	}

	cfg, err := s.Store.UpdateScoringConfig(c.Request().Context(), db.ScoringConfigUpdate{
		BudgetWeight:    req.BudgetWeight,
		SectorWeight:    req.SectorWeight,
		GeographyWeight: req.GeographyWeight,
		TimingWeight:    req.TimingWeight,
		UtahMultiplier:  req.UtahMultiplier,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, cfg)
}

type teamMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (s *Server) handleListTeam(c echo.Context) error {
	members, err := s.Store.ListTeamMembers(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"members": members, "total": len(members)})
}

func (s *Server) handleCreateTeamMember(c echo.Context) error {
	var req teamMemberRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name and email are required"})
	}

	member, err := s.Store.CreateTeamMember(c.Request().Context(), req.Name, req.Email)
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return c.JSON(http.StatusConflict, map[string]string{"error": "Team member email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, member)
}

func (s *Server) handleDeleteTeamMember(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid team member id"})
	}

	if err := s.Store.DeleteTeamMember(c.Request().Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Team member not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.NoContent(http.StatusNoContent)
}
