package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mfreeman481/paysheet-api/internal/dto"
	"github.com/mfreeman481/paysheet-api/internal/models"
	appErrors "github.com/mfreeman481/paysheet-api/pkg/errors"
	"github.com/mfreeman481/paysheet-api/pkg/response"
)

type rosterService interface {
	Load(team models.Team) []string
	Save(text string, team models.Team) error
}

// RosterHandler manages the per-team subcontractor list endpoints.
type RosterHandler struct {
	service rosterService
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(service rosterService) *RosterHandler {
	return &RosterHandler{service: service}
}

// Get godoc
// @Summary Subcontractor roster for a team
// @Tags Rosters
// @Produce json
// @Param team path string true "Team (Construction or Welding)"
// @Success 200 {object} response.Envelope
// @Router /rosters/{team} [get]
func (h *RosterHandler) Get(c *gin.Context) {
	team, err := models.ParseTeam(c.Param("team"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "team must be Construction or Welding"))
		return
	}
	names := h.service.Load(team)
	response.JSON(c, http.StatusOK, dto.RosterResponse{Team: team.String(), Names: names}, nil)
}

// Save godoc
// @Summary Overwrite a team's subcontractor roster
// @Tags Rosters
// @Accept json
// @Produce json
// @Param team path string true "Team (Construction or Welding)"
// @Success 200 {object} response.Envelope
// @Router /rosters/{team} [put]
func (h *RosterHandler) Save(c *gin.Context) {
	team, err := models.ParseTeam(c.Param("team"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "team must be Construction or Welding"))
		return
	}
	var req dto.SaveRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "names is required"))
		return
	}
	if err := h.service.Save(req.Names, team); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save roster"))
		return
	}
	names := h.service.Load(team)
	response.JSON(c, http.StatusOK, dto.RosterResponse{Team: team.String(), Names: names}, nil)
}
