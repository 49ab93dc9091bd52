package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles. The roles accepted
// correspond to the values stored in the JWT's "role" claim. A request with
// the wrong role is rejected with 401 and the body the existing clients
// already handle ({"error":"bad role"}); the original service answered 401
// rather than 403 here and the storefront keys off that. It assumes JWTAuth
// has already extracted the role into the context.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	// Build a set of allowed roles for constant-time lookups.
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get(CtxRole)
			role, ok := v.(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "bad role"})
			}
			return next(c)
		}
	}
}
