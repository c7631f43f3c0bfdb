package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/infrastructure/logger"
	"github.com/amire/crewboard/internal/ports"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService ports.AuthService
	logger      *logger.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService ports.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login handles user login
// @Summary Log in
// @Description Exchange username and password for a bearer token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body ports.LoginRequest true "Credentials"
// @Success 200 {object} ports.LoginResponse
// @Failure 401 {object} MessageResponse
// @Router /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req ports.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	response, err := h.authService.Login(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, entities.ErrInvalidCredentials) || errors.Is(err, entities.ErrAccountInactive) {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials")
		}
		h.logger.Errorw("Login failed", "error", err, "username", req.Username)
		return err
	}

	return c.JSON(http.StatusOK, response)
}

// VersionHandler reports the running server version
type VersionHandler struct {
	version string
}

// NewVersionHandler creates a new version handler
func NewVersionHandler(version string) *VersionHandler {
	return &VersionHandler{version: version}
}

// Version returns the server version
// @Summary Server version
// @Tags meta
// @Produce json
// @Success 200 {object} ports.VersionResponse
// @Router /version [get]
func (h *VersionHandler) Version(c echo.Context) error {
	return c.JSON(http.StatusOK, ports.VersionResponse{Version: h.version})
}

// MessageResponse is the body of every error response
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorStatus maps domain errors to HTTP errors. Unknown errors pass
// through and become 500s in the error handler.
func ErrorStatus(err error) error {
	var (
		validation *entities.ValidationError
		httpErr    *echo.HTTPError
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &validation):
		return echo.NewHTTPError(http.StatusBadRequest, validation.Error()).SetInternal(err)
	case errors.Is(err, entities.ErrJobNotFound),
		errors.Is(err, entities.ErrMemberNotFound),
		errors.Is(err, entities.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error()).SetInternal(err)
	case errors.Is(err, entities.ErrUsernameTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error()).SetInternal(err)
	}
	return err
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid id")
	}
	return id, nil
}
