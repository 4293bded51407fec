package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/socio-analytics/opp-radar/internal/auth"
	"github.com/socio-analytics/opp-radar/internal/db"
	"github.com/socio-analytics/opp-radar/internal/models"
)

func listParamsFromQuery(c echo.Context) db.ListParams {
	params := db.ListParams{
		Tier:         c.QueryParam("tier"),
		Status:       c.QueryParam("status"),
		Source:       c.QueryParam("source"),
		AssignedToID: c.QueryParam("assigned_to"),
		Search:       c.QueryParam("q"),
		SortBy:       c.QueryParam("sort"),
		Limit:        20,
	}

	if v := c.QueryParam("isUtah"); v != "" {
		utah := v == "true"
		params.IsUtah = &utah
	}
	if l, err := strconv.Atoi(c.QueryParam("limit")); err == nil && l > 0 && l <= 100 {
		params.Limit = l
	}
	if o, err := strconv.Atoi(c.QueryParam("offset")); err == nil && o >= 0 {
		params.Offset = o
	}
	if v, err := strconv.ParseFloat(c.QueryParam("min_score"), 64); err == nil && v > 0 {
		params.MinScore = v
	}

	return params
}

func (s *Server) handleListOpportunities(c echo.Context) error {
	result, err := s.Store.ListOpportunities(c.Request().Context(), listParamsFromQuery(c))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleGetOpportunity(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid opportunity id"})
	}

	opp, err := s.Store.GetOpportunity(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Opportunity not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, opp)
}

// curationRequest distinguishes absent fields from explicit nulls; a
// JSON null on assignedToId clears the assignment.
type curationRequest struct {
	Status       *string         `json:"status"`
	Decision     *string         `json:"decision"`
	AssignedToID json.RawMessage `json:"assignedToId"`
	Notes        *string         `json:"notes"`
	AIBrief      json.RawMessage `json:"aiBrief"`
}

var validStatuses = map[models.OpportunityStatus]bool{
	models.StatusNew: true, models.StatusReviewing: true, models.StatusPursuing: true,
	models.StatusPassed: true, models.StatusWon: true, models.StatusLost: true,
}

func (s *Server) handleUpdateOpportunity(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid opportunity id"})
	}

	var req curationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	var upd db.CurationUpdate

	if req.Status != nil {
		status := models.OpportunityStatus(*req.Status)
		if !validStatuses[status] {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid status"})
		}
		upd.Status = &status
	}
	upd.Decision = req.Decision
	upd.Notes = req.Notes
	upd.AIBrief = req.AIBrief

	if len(req.AssignedToID) > 0 {
		if bytes.Equal(bytes.TrimSpace(req.AssignedToID), []byte("null")) {
			upd.ClearAssignee = true
		} else {
			var idStr string
			if err := json.Unmarshal(req.AssignedToID, &idStr); err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid assignedToId"})
			}
			assignee, err := uuid.Parse(idStr)
			if err != nil {
				return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid assignedToId"})
			}
			upd.AssignedToID = &assignee
		}
	}

	opp, err := s.Store.UpdateCuration(c.Request().Context(), id, upd)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Opportunity not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	if userID, err := auth.UserIDFromContext(c); err == nil {
		s.Logger.Info("opportunity curated",
			zap.String("opportunity_id", id),
			zap.String("user_id", userID.String()))
	}

	return c.JSON(http.StatusOK, opp)
}

func (s *Server) handleGetStats(c echo.Context) error {
	stats, err := s.Store.GetStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}
