package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/food-court-orders/internal/utils" // token parsing
)

// Context keys under which JWTAuth stores the verified identity. Handlers
// read them back with c.Get.
const (
	CtxUsername  = "username"
	CtxRole      = "role"
	CtxStoreName = "store_name"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the identity claims into the request context. Every failure —
// missing header, expired token, bad signature, malformed claims — produces
// the same 401 body so the caller never learns which check tripped.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "bad token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			claims, err := utils.ParseUserToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "bad token"})
			}

			c.Set(CtxUsername, claims.Username)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxStoreName, claims.StoreName)
			return next(c)
		}
	}
}
