package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/food-court-orders/internal/config"     // rate-limit configuration
	"github.com/iliyamo/food-court-orders/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/food-court-orders/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/iliyamo/food-court-orders/internal/model"      // role names
)

// RegisterRoutes wires up the whole HTTP surface. The paths are the ones the
// existing storefront and ops board call, so they are flat rather than
// versioned.
//
// Unauthenticated: the health check and the two login endpoints (the latter
// behind the token-bucket limiter). Everything else requires a bearer token;
// the store edit and order queue endpoints additionally require the seller
// role, checkout requires the client role.
func RegisterRoutes(e *echo.Echo, a *handler.AuthHandler, s *handler.StoreHandler, o *handler.OrderHandler, jwtSecret string, rl config.RateLimitConfig) {
	e.GET("/healthz", handler.Health)

	// Login endpoints sit behind the rate limiter; everything else is
	// already gated by a token and does not need one.
	limited := e.Group("/login", middleware.NewTokenBucket(rl))
	limited.POST("/client", a.LoginClient)
	limited.POST("/seller", a.LoginSeller)

	auth := middleware.JWTAuth(jwtSecret)
	seller := middleware.RequireRole(model.RoleSeller)
	client := middleware.RequireRole(model.RoleClient)

	// Any authenticated role may browse the store list.
	e.GET("/stores.json", s.ListStores, auth)

	// Seller surface: edit own store, read and mutate own order queue.
	e.POST("/store/:storeName/edit", s.EditStore, auth, seller)
	e.GET("/getOrders", o.GetOrders, auth, seller)
	e.POST("/updateOrders", o.UpdateOrders, auth, seller)

	// Client surface: checkout.
	e.POST("/orderPlacement", o.PlaceOrder, auth, client)
}
