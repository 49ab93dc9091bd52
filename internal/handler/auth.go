package handler

import (
	"encoding/base64" // decoding HTTP Basic credentials
	"log"             // server-side note when a seller account is misconfigured
	"net/http"        // HTTP status codes and primitives
	"strings"         // string manipulation utilities

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/food-court-orders/internal/config"     // app configuration
	"github.com/iliyamo/food-court-orders/internal/model"      // roles
	"github.com/iliyamo/food-court-orders/internal/repository" // credential and store lookups
	"github.com/iliyamo/food-court-orders/internal/utils"      // hashing and token issuing
)

// AuthHandler bundles dependencies for the login endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Stores *repository.StoreRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, s *repository.StoreRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Stores: s}
}

// ----- DTOs -----

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// credentials pulls a username/password pair out of the request: HTTP Basic
// takes precedence, a JSON body is the fallback. ok is false when neither
// carries both fields.
func credentials(c echo.Context) (username, password string, ok bool) {
	h := c.Request().Header.Get("Authorization")
	if len(h) > 6 && strings.EqualFold(h[:6], "Basic ") {
		if decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(h[6:])); err == nil {
			if idx := strings.Index(string(decoded), ":"); idx > 0 {
				username = string(decoded)[:idx]
				password = string(decoded)[idx+1:]
				if username != "" && password != "" {
					return username, password, true
				}
			}
		}
	}
	var req loginReq
	if err := c.Bind(&req); err == nil && req.Username != "" && req.Password != "" {
		return req.Username, req.Password, true
	}
	return "", "", false
}

// LoginClient authenticates a customer and returns a bearer token.
func (h *AuthHandler) LoginClient(c echo.Context) error {
	return h.login(c, model.RoleClient)
}

// LoginSeller authenticates a store operator. Password verification alone is
// not sufficient: if the account names a store, that store must exist right
// now — a dangling reference fails the login loudly instead of issuing a
// token that breaks every store-scoped call later.
func (h *AuthHandler) LoginSeller(c echo.Context) error {
	return h.login(c, model.RoleSeller)
}

func (h *AuthHandler) login(c echo.Context, role string) error {
	username, password, ok := credentials(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "!token"})
	}

	u, err := h.Users.Find(role, username)
	if err != nil {
		// Unknown user and wrong password produce the same answer; the API
		// must not confirm which usernames exist.
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "bad token"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unexpected server error"})
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "bad token"})
	}

	if role == model.RoleSeller && u.StoreName != "" && !h.Stores.Exists(u.StoreName) {
		log.Printf("seller %s assigned to missing store %q", u.Username, u.StoreName)
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "store assigned to user not found"})
	}

	tok, err := utils.NewUserToken(h.Cfg.JWTSecret, u.Username, role, u.StoreName, h.Cfg.TokenTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "unexpected server error"})
	}
	// The original service also echoed the token in a response header; the
	// storefront reads it from there.
	c.Response().Header().Set("Authorization", "Bearer "+tok.Token)
	return c.JSON(http.StatusOK, echo.Map{"token": tok.Token})
}
