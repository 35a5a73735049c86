package auth

import (
	"github.com/labstack/echo/v4"

	"catapi/internal/model"
)

// ContextKey is where the JWT middleware stores the parsed *Claims.
const ContextKey = "user"

// Principal is the authenticated actor of a request.
type Principal struct {
	ID       string
	UserName string
	Email    string
	Role     model.Role
}

// PrincipalFrom returns the principal resolved for c, or nil if the request
// carries no valid token.
func PrincipalFrom(c echo.Context) *Principal {
	claims, ok := c.Get(ContextKey).(*Claims)
	if !ok || claims == nil || claims.UserID == "" {
		return nil
	}
	return claims.Principal()
}
