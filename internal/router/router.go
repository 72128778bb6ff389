// Package router defines how HTTP routes are registered for the API.
package router

import (
    "github.com/labstack/echo/v4"

    "github.com/restobook/restaurant-booking/internal/handler"
    "github.com/restobook/restaurant-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance. Currently it exposes only a health
// check, which load balancers and monitoring systems can use to
// verify the service is up.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated operations (register, login, refresh, logout) live
// under /v1/auth; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    // Rotating refresh: the presented refresh token is revoked and a
    // new pair is issued.
    g.POST("/refresh", a.Refresh)
    // Non-rotating: issues a new access token only.
    g.POST("/refresh-access", a.RefreshAccess)
    // Logout accepts either a refresh_token body or a Bearer access
    // token, so it does not sit behind the JWT middleware.
    g.POST("/logout", a.Logout)

    auth := e.Group("/v1")
    auth.Use(middleware.JWTAuth(jwtSecret))
    auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
    auth.GET("/me", a.Me)
}
