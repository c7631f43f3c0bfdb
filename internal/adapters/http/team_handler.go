package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/infrastructure/logger"
	"github.com/amire/crewboard/internal/ports"
)

// TeamHandler handles team member requests
type TeamHandler struct {
	teamService ports.TeamService
	logger      *logger.Logger
}

// NewTeamHandler creates a new team handler
func NewTeamHandler(teamService ports.TeamService, logger *logger.Logger) *TeamHandler {
	return &TeamHandler{teamService: teamService, logger: logger}
}

// ListMembers returns the team, or only members available on a day
// @Summary List team members
// @Tags team
// @Produce json
// @Param available_on query string false "Only members available on this day (YYYY-MM-DD)"
// @Success 200 {array} entities.Member
// @Security BearerAuth
// @Router /team [get]
func (h *TeamHandler) ListMembers(c echo.Context) error {
	var (
		members []*entities.Member
		err     error
	)
	if day := c.QueryParam("available_on"); day != "" {
		members, err = h.teamService.AvailableOn(c.Request().Context(), entities.DateKey(day))
	} else {
		members, err = h.teamService.ListMembers(c.Request().Context())
	}
	if err != nil {
		return ErrorStatus(err)
	}
	if members == nil {
		members = []*entities.Member{}
	}

	return c.JSON(http.StatusOK, members)
}

// GetMember returns one team member
// @Summary Get a team member
// @Tags team
// @Produce json
// @Param id path int true "Member ID"
// @Success 200 {object} entities.Member
// @Security BearerAuth
// @Router /team/{id} [get]
func (h *TeamHandler) GetMember(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	member, err := h.teamService.GetMember(c.Request().Context(), id)
	if err != nil {
		return ErrorStatus(err)
	}

	return c.JSON(http.StatusOK, member)
}

// CreateMember creates a team member
// @Summary Create a team member
// @Tags team
// @Accept json
// @Produce json
// @Param member body ports.CreateMemberRequest true "Member"
// @Success 201 {object} entities.Member
// @Security BearerAuth
// @Router /team [post]
func (h *TeamHandler) CreateMember(c echo.Context) error {
	var req ports.CreateMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	member, err := h.teamService.CreateMember(c.Request().Context(), req)
	if err != nil {
		return ErrorStatus(err)
	}

	return c.JSON(http.StatusCreated, member)
}

// ReplaceMember overwrites a team member
// @Summary Replace a team member
// @Tags team
// @Accept json
// @Produce json
// @Param id path int true "Member ID"
// @Param member body ports.ReplaceMemberRequest true "Member"
// @Success 200 {object} entities.Member
// @Security BearerAuth
// @Router /team/{id} [put]
func (h *TeamHandler) ReplaceMember(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req ports.ReplaceMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	member, err := h.teamService.ReplaceMember(c.Request().Context(), id, req)
	if err != nil {
		return ErrorStatus(err)
	}

	return c.JSON(http.StatusOK, member)
}

// DeleteMember deletes a team member and detaches it from every job
// @Summary Delete a team member
// @Tags team
// @Param id path int true "Member ID"
// @Success 204
// @Security BearerAuth
// @Router /team/{id} [delete]
func (h *TeamHandler) DeleteMember(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.teamService.DeleteMember(c.Request().Context(), id); err != nil {
		return ErrorStatus(err)
	}

	return c.NoContent(http.StatusNoContent)
}
