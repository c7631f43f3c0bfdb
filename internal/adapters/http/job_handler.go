package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/infrastructure/logger"
	"github.com/amire/crewboard/internal/ports"
)

// JobHandler handles job requests
type JobHandler struct {
	jobService ports.JobService
	loc        *time.Location
	logger     *logger.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(jobService ports.JobService, loc *time.Location, logger *logger.Logger) *JobHandler {
	return &JobHandler{jobService: jobService, loc: loc, logger: logger}
}

// ListJobs returns jobs, optionally filtered
// @Summary List jobs
// @Tags jobs
// @Produce json
// @Param status query string false "in_progress, done or pending"
// @Param day query string false "Only jobs scheduled on this day (YYYY-MM-DD)"
// @Param member query int false "Only jobs assigned to this member"
// @Param from query string false "Deadline on or after (YYYY-MM-DD)"
// @Param to query string false "Deadline on or before (YYYY-MM-DD)"
// @Success 200 {array} entities.Job
// @Security BearerAuth
// @Router /jobs [get]
func (h *JobHandler) ListJobs(c echo.Context) error {
	filter, err := h.parseFilter(c)
	if err != nil {
		return err
	}

	jobs, err := h.jobService.ListJobs(c.Request().Context(), filter)
	if err != nil {
		return ErrorStatus(err)
	}
	if jobs == nil {
		jobs = []*entities.Job{}
	}

	return c.JSON(http.StatusOK, jobs)
}

// GetJob returns one job
// @Summary Get a job
// @Tags jobs
// @Produce json
// @Param id path int true "Job ID"
// @Success 200 {object} entities.Job
// @Failure 404 {object} MessageResponse
// @Security BearerAuth
// @Router /jobs/{id} [get]
func (h *JobHandler) GetJob(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	job, err := h.jobService.GetJob(c.Request().Context(), id)
	if err != nil {
		return ErrorStatus(err)
	}

	return c.JSON(http.StatusOK, job)
}

// CreateJob creates a job
// @Summary Create a job
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body ports.CreateJobRequest true "Job"
// @Success 201 {object} entities.Job
// @Failure 400 {object} MessageResponse
// @Security BearerAuth
// @Router /jobs [post]
func (h *JobHandler) CreateJob(c echo.Context) error {
	var req ports.CreateJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	job, err := h.jobService.CreateJob(c.Request().Context(), req)
	if err != nil {
		return ErrorStatus(err)
	}

	return c.JSON(http.StatusCreated, job)
}

// ReplaceJob overwrites a job with the full record in the body
// @Summary Replace a job
// @Tags jobs
// @Accept json
// @Produce json
// @Param id path int true "Job ID"
// @Param job body ports.ReplaceJobRequest true "Job"
// @Success 200 {object} entities.Job
// @Failure 404 {object} MessageResponse
// @Security BearerAuth
// @Router /jobs/{id} [put]
func (h *JobHandler) ReplaceJob(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req ports.ReplaceJobRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	job, err := h.jobService.ReplaceJob(c.Request().Context(), id, req)
	if err != nil {
		return ErrorStatus(err)
	}

	return c.JSON(http.StatusOK, job)
}

// DeleteJob deletes a job
// @Summary Delete a job
// @Tags jobs
// @Param id path int true "Job ID"
// @Success 204
// @Failure 404 {object} MessageResponse
// @Security BearerAuth
// @Router /jobs/{id} [delete]
func (h *JobHandler) DeleteJob(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.jobService.DeleteJob(c.Request().Context(), id); err != nil {
		return ErrorStatus(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *JobHandler) parseFilter(c echo.Context) (ports.JobFilter, error) {
	var filter ports.JobFilter

	if s := c.QueryParam("status"); s != "" {
		status := entities.JobStatus(s)
		if !status.Valid() {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "Invalid status parameter")
		}
		filter.Status = &status
	}

	dates := []struct {
		param string
		dst   **entities.DateKey
	}{
		{"day", &filter.Day},
		{"from", &filter.DeadlineMin},
		{"to", &filter.DeadlineMax},
	}
	for _, d := range dates {
		raw := c.QueryParam(d.param)
		if raw == "" {
			continue
		}
		key, err := entities.ParseDateKey(raw, h.loc)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+d.param+" parameter")
		}
		*d.dst = &key
	}

	if m := c.QueryParam("member"); m != "" {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return filter, echo.NewHTTPError(http.StatusBadRequest, "Invalid member parameter")
		}
		filter.MemberID = &id
	}

	return filter, nil
}
