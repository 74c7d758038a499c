package router // package router wires handlers, middleware and routes together

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/adamwrona/airport-ops/internal/config"
	"github.com/adamwrona/airport-ops/internal/handler"
	"github.com/adamwrona/airport-ops/internal/middleware"
	"github.com/adamwrona/airport-ops/internal/model"
)

// Deps carries everything route registration needs.  All handlers are
// constructed by the caller; the router only decides paths, groups and
// middleware order.
type Deps struct {
	Cfg   config.Config
	Redis *redis.Client // nil disables caching and rate limiting

	Auth     *handler.AuthHandler
	Users    *handler.UserHandler
	Clients  *handler.ClientHandler
	Flights  *handler.FlightHandler
	Routes   *handler.RouteHandler
	Baggage  *handler.BaggageHandler
	Services *handler.ServiceHandler
	Loyalty  *handler.LoyaltyHandler
}

// Register mounts every route on the Echo instance.  Public surface is
// the health check, metrics and the account endpoints; everything else
// sits behind JWT auth with per-group role checks.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Cross-cutting Redis middleware.  Both tolerate a nil client and
	// become no-ops when Redis is down.
	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), d.Redis)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), d.Redis)
	e.Use(rl)

	// Account endpoints: no session required except /me and logout-all.
	account := e.Group("/api/account")
	account.POST("/register", d.Auth.Register)
	account.POST("/login", d.Auth.Login)
	account.POST("/refresh", d.Auth.Refresh)
	account.POST("/logout", d.Auth.Logout)

	// Everything below requires a valid access token.
	api := e.Group("/api", middleware.JWTAuth(d.Cfg.JWTSecret))
	api.GET("/account/me", d.Auth.Me)

	staff := middleware.RequireRole(model.RoleAdmin, model.RoleWorker)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	pilotOnly := middleware.RequireRole(model.RolePilot)
	clientOnly := middleware.RequireRole(model.RoleClient)

	// Accounts.
	api.GET("/users/me", d.Users.Me)
	api.PUT("/users/me", d.Users.UpdateMe)
	api.GET("/users", d.Users.List, adminOnly)
	api.DELETE("/users/:id", d.Users.Delete, adminOnly)

	// Clients.
	api.GET("/client", d.Clients.List, staff)
	api.GET("/client/byUser/:userId", d.Clients.ByUser, staff)
	api.PUT("/client/me", d.Clients.UpdateMe, clientOnly)
	api.DELETE("/client/:id", d.Clients.Delete, adminOnly)

	// Flights.  The board and pilot views are cached reads.
	api.GET("/flight", d.Flights.List, cache)
	api.GET("/flight/pilot/profile/:userId", d.Flights.PilotProfile, staff)
	api.PUT("/flight/pilot/:pilotId", d.Flights.UpdatePilot, staff)
	api.GET("/flight/pilot/:pilotId", d.Flights.ByPilot)
	api.GET("/flight/unassigned/:pilotId", d.Flights.Unassigned, pilotOnly)
	api.POST("/flight/accept/:flightId", d.Flights.Accept, pilotOnly)
	api.POST("/flight/decline/:flightId", d.Flights.Decline, pilotOnly)
	api.PUT("/flight/:flightId", d.Flights.Update, staff)

	// Routes and weather.
	api.GET("/routes", d.Routes.List, cache)
	api.GET("/routes/:id", d.Routes.Get)
	api.POST("/routes", d.Routes.Create, staff)
	api.PUT("/routes/:id", d.Routes.Update, staff)
	api.DELETE("/routes/:id", d.Routes.Delete, staff)
	api.GET("/routes/:id/weather", d.Routes.RouteWeather)
	api.GET("/routes/:id/weather/history", d.Routes.WeatherHistory, staff)

	// Baggage.
	api.GET("/baggage", d.Baggage.List)
	api.GET("/baggage/:id", d.Baggage.Get)
	api.POST("/baggage", d.Baggage.Create)
	api.PUT("/baggage/:id", d.Baggage.Update)
	api.DELETE("/baggage/:id", d.Baggage.Delete)
	api.GET("/baggage/:id/location", d.Baggage.Location)
	api.GET("/baggage/:id/tracking", d.Baggage.History)

	// Services and orders.
	api.GET("/service", d.Services.List, cache)
	api.GET("/service/:id", d.Services.Get)
	api.POST("/service", d.Services.Create, staff)
	api.PUT("/service/:id", d.Services.Update, staff)
	api.DELETE("/service/:id", d.Services.Delete, adminOnly)
	api.POST("/service/order", d.Services.Order, clientOnly)
	api.GET("/history/services", d.Services.History, clientOnly)

	// Loyalty.
	api.GET("/loyalty/me", d.Loyalty.Me, clientOnly)
}
