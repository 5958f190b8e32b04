package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avoronov/periodvault/internal/common"
	"github.com/avoronov/periodvault/internal/server/auth"
)

const userIDContextKey = "userID"

// authRequired extracts the bearer token, verifies it, and stores the owning
// user's id in the request context.
func (s *Server) authRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(common.AccessTokenHeaderName)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
		}

		userID, err := auth.GetUserIDFromToken(token, s.secret)
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, common.ErrTokenExpired) {
				msg = "token expired"
			}
			return echo.NewHTTPError(http.StatusUnauthorized, msg)
		}

		c.Set(userIDContextKey, userID)
		return next(c)
	}
}

func callerID(c echo.Context) string {
	id, _ := c.Get(userIDContextKey).(string)
	return id
}
