package server

import (
	"github.com/labstack/echo/v4"

	"github.com/maialona/line-budget-bot/internal/handlers"
)

func registerRoutes(
	e *echo.Echo,
	webhookHandler *handlers.WebhookHandler,
	authHandler *handlers.AuthHandler,
	dashboardHandler *handlers.DashboardHandler,
	authMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health)

	e.POST("/line/webhook", webhookHandler.Receive)

	authGroup := e.Group("/auth/line", authRateLimiter)
	authGroup.GET("/login", authHandler.LoginRedirect)
	authGroup.GET("/callback", authHandler.Callback)

	api := e.Group("/api/v1")
	dashboard := api.Group("/dashboard", authMiddleware)
	dashboard.GET("", dashboardHandler.Get)
	dashboard.GET("/me", dashboardHandler.Me)
	dashboard.PUT("/budget", dashboardHandler.UpdateBudget)
	dashboard.PUT("/expenses/:id", dashboardHandler.UpdateExpense)
	dashboard.DELETE("/expenses/:id", dashboardHandler.DeleteExpense)
	dashboard.GET("/stream", dashboardHandler.Stream)
}
