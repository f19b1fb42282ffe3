package middleware

import (
	"net/http"

	"github.com/connectly/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// AdminOnly gates a route group to admin accounts. The account is re-read
// so a revoked admin flag or a block takes effect before token expiry.
func AdminOnly(userRepo repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			accountID, ok := AccountIDFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}

			user, err := userRepo.GetUserByID(c.Request().Context(), accountID)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
			}
			if !user.IsAdmin || user.IsBlocked {
				return echo.NewHTTPError(http.StatusForbidden, "Admin access required")
			}

			return next(c)
		}
	}
}
