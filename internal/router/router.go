package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/auction-bin-tracker/internal/handler"
	"github.com/iliyamo/auction-bin-tracker/internal/middleware"
)

// RegisterRoutes registers routes that require no authentication: the
// health check and the overlay surface.  The overlay endpoints are public
// on purpose; a browser source inside the seller's streaming software has
// no way to carry a bearer token.
func RegisterRoutes(e *echo.Echo, latest *handler.LatestHandler) {
	e.GET("/healthz", handler.Health)
	e.GET("/get_latest", latest.Latest)
	e.GET("/ws", latest.WebSocket)
}

// RegisterAuth registers the seller account endpoints.  Register, login
// and refresh live under /v1/auth and need no token; /v1/me and logout
// ride on the protected group created by RegisterShow.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// logout accepts either a refresh token in the body (no JWT needed)
	// or a bearer token to revoke every session
	g.POST("/logout", a.Logout)
}

// ShowDeps collects the handlers mounted on the protected /v1 group.
type ShowDeps struct {
	Auth          *handler.AuthHandler
	Transactions  *handler.TransactionHandler
	Views         *handler.ViewHandler
	Stats         *handler.StatsHandler
	Show          *handler.ShowHandler
	Subscription  *handler.SubscriptionHandler
	Announcements *handler.AnnouncementHandler
}

// RegisterShow wires every show endpoint under /v1 behind JWT auth.  Extra
// middleware (rate limiting on mutations, response cache on projections)
// is applied per route group by the caller via the returned groups pattern;
// here the routes themselves are declared.
func RegisterShow(e *echo.Echo, d ShowDeps, jwtSecret string, extra ...echo.MiddlewareFunc) {
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(extra...)

	auth.GET("/me", d.Auth.Me)

	// the single mutating entry point of the ledger
	auth.POST("/transactions", d.Transactions.Record)

	// read-only projections
	auth.GET("/bidders", d.Views.Bidders)
	auth.GET("/bidders/search", d.Views.Search)
	auth.GET("/bins", d.Views.Bins)
	auth.GET("/stats", d.Stats.Stats)
	auth.GET("/stats/top-buyers", d.Stats.TopBuyers)
	auth.GET("/stats/sell-rate", d.Stats.SellRate)

	// show lifecycle
	auth.GET("/show", d.Show.Info)
	auth.POST("/show/clear", d.Show.Clear)
	auth.POST("/export", d.Show.Export)
	auth.POST("/import", d.Show.Import)

	// subscription tier
	auth.GET("/subscription", d.Subscription.Get)
	auth.PUT("/subscription", d.Subscription.Update)

	// chat copy texts
	auth.GET("/announcements/giveaway", d.Announcements.Giveaway)
	auth.GET("/announcements/top-buyer/:rank", d.Announcements.TopBuyer)
}
