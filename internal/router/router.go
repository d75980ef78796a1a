package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // Echo web framework for routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-kot/internal/config"
	"github.com/iliyamo/restaurant-kot/internal/handler"
	"github.com/iliyamo/restaurant-kot/internal/middleware"
)

// Register wires every route of the service onto the Echo instance.
//
// Unauthenticated: the health check and the auth session endpoints.
// Everything else lives in the /v1 group behind JWT middleware.  The menu
// lookups additionally sit behind the Redis response cache, and the ticket
// endpoints behind the rate limiter; both degrade to pass-throughs when
// rdb is nil.
func Register(e *echo.Echo, cfg config.Config, rdb *redis.Client,
	auth *handler.AuthHandler, menu *handler.MenuHandler, tickets *handler.TicketHandler) {

	e.GET("/healthz", handler.Health)

	// Session lifecycle: no JWT required.
	a := e.Group("/v1/auth")
	a.POST("/login", auth.Login)
	a.POST("/refresh", auth.Refresh)
	a.POST("/logout", auth.Logout)

	// Protected API.
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(cfg.JWTSecret))
	v1.GET("/me", auth.Me)

	// Catalog lookups: read-only and cacheable.
	cache := middleware.MenuCache(config.LoadCacheConfig(), rdb)
	v1.GET("/menu/sections", menu.GetSections, cache)
	v1.GET("/menu/sections/:section/items", menu.GetSectionItems, cache)
	v1.GET("/service-modes", menu.GetServiceModes, cache)
	v1.GET("/rooms", menu.GetRooms, cache)

	// Ticket operations: rate limited per user/route.
	limit := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)
	v1.POST("/tickets", tickets.Save, limit)
	v1.GET("/tickets", tickets.List, limit)
	// Static route must be registered so it wins over /tickets/:number.
	v1.GET("/tickets/latest", tickets.Latest, limit)
	v1.GET("/tickets/:number", tickets.Details, limit)
	v1.GET("/tickets/:number/print", tickets.Printable, limit)
	v1.PUT("/tickets/items/:id/cancel", tickets.Cancel, limit)
}
