package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"github.com/maialona/line-budget-bot/internal/auth"
	"github.com/maialona/line-budget-bot/internal/bot"
	"github.com/maialona/line-budget-bot/internal/config"
	"github.com/maialona/line-budget-bot/internal/handlers"
	"github.com/maialona/line-budget-bot/internal/line"
	"github.com/maialona/line-budget-bot/internal/notifications"
	"github.com/maialona/line-budget-bot/internal/repository"
)

// New assembles the Echo server with routes and dependencies.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	hub := notifications.NewHub()

	lineClient := line.NewClient(cfg.Line.ChannelAccessToken, cfg.Line.APIBaseURL, cfg.Line.Timeout)
	loginClient := line.NewLoginClient(cfg.Line.LoginChannelID, cfg.Line.LoginChannelSecret,
		cfg.Line.LoginCallbackURL, cfg.Line.APIBaseURL, cfg.Line.AccessBaseURL, cfg.Line.Timeout)

	botHandler := bot.NewHandler(userRepo, categoryRepo, expenseRepo, lineClient, hub, logger,
		cfg.App.DefaultCategoryName, cfg.App.DefaultCurrency)

	webhookHandler := handlers.NewWebhookHandler(botHandler, cfg.Line.ChannelSecret, logger)
	authHandler := handlers.NewAuthHandler(userRepo, loginClient, tokenManager,
		cfg.App.FrontendOrigin, cfg.App.DefaultCurrency, logger)
	dashboardHandler := handlers.NewDashboardHandler(userRepo, expenseRepo, hub, logger)

	registerRoutes(
		e,
		webhookHandler,
		authHandler,
		dashboardHandler,
		auth.JWTMiddleware(tokenManager),
		authRateLimiter(cfg.Auth),
	)

	return e
}

// NewHTTPServer creates a net/http server with the configured timeouts.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogMethod:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func authRateLimiter(cfg config.AuthConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
