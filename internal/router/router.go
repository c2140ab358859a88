package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/v4entertainments/ticket-checkin/internal/handler"    // handlers that implement the station logic
	"github.com/v4entertainments/ticket-checkin/internal/middleware" // middleware for JWT and session enforcement
	"github.com/v4entertainments/ticket-checkin/internal/session"    // session store consulted by protected routes
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems use this endpoint to verify
	// that the station service is up.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the login/logout/session endpoints.  Login is
// unauthenticated; logout and session read are reachable without a bearer
// token so a station whose session just expired can still clean up and
// re-render its login screen.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
	g.GET("/session", a.Session)
}

// RegisterCheckin registers the scan and check-in endpoints.  All of them
// require a valid bearer token and a live station session carrying the
// "checkin" permission; expiry or logout cuts them off even while the JWT
// itself is still within its lifetime.
func RegisterCheckin(e *echo.Echo, h *handler.CheckinHandler, store *session.Store, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireSession(store, "checkin"))
	// Scan intake: one decode at a time per station.
	g.POST("/scan", h.Scan)
	// Manual order lookup and post-partial-failure refresh.
	g.GET("/orders/:id", h.GetOrder)
	// Seat-subset confirmation.
	g.POST("/orders/:id/checkin", h.Confirm)
	// Observable flow state for the station UI.
	g.GET("/flow", h.Flow)
}
