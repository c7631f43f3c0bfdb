package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/amire/crewboard/internal/domain/entities"
	"github.com/amire/crewboard/internal/infrastructure/logger"
	"github.com/amire/crewboard/internal/ports"
)

// Context keys set by authMiddleware
const (
	ctxUser     = "user"
	ctxUsername = "username"
	ctxUserRole = "user_role"
)

// TokenValidator is the part of the auth service the middleware needs
type TokenValidator interface {
	ValidateToken(tokenString string) (*ports.Claims, error)
}

// authMiddleware validates JWT tokens. Browsers cannot set headers on a
// websocket handshake, so the token may also arrive as ?access_token=.
func authMiddleware(auth TokenValidator, log *logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c)
			if err != nil {
				return err
			}

			claims, err := auth.ValidateToken(tokenString)
			if err != nil {
				log.LogSecurityEvent("invalid_token", "", c.RealIP(), map[string]interface{}{
					"error": err.Error(),
				})
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			c.Set(ctxUser, claims.UserID)
			c.Set(ctxUsername, claims.Username)
			c.Set(ctxUserRole, claims.Role)

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		if token := c.QueryParam("access_token"); token != "" {
			return token, nil
		}
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader || tokenString == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
	}
	return tokenString, nil
}

// requireRole checks if user has required role
func requireRole(log *logger.Logger, roles ...entities.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRole, ok := c.Get(ctxUserRole).(entities.UserRole)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Role information not found")
			}

			for _, requiredRole := range roles {
				if userRole == requiredRole {
					return next(c)
				}
			}

			userID, _ := c.Get(ctxUser).(string)
			log.LogSecurityEvent("insufficient_permissions", userID, c.RealIP(), map[string]interface{}{
				"required_roles": roles,
				"user_role":      userRole,
				"endpoint":       c.Request().URL.Path,
			})

			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}
