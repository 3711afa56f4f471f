package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"github.com/maialona/line-budget-bot/internal/auth"
	"github.com/maialona/line-budget-bot/internal/line"
	"github.com/maialona/line-budget-bot/internal/repository"
)

type AuthHandler struct {
	Users           *repository.UserRepository
	Login           *line.LoginClient
	TokenManager    *auth.TokenManager
	FrontendOrigin  string
	DefaultCurrency string
	Logger          *slog.Logger
}

// NewAuthHandler creates the LINE Login handler for the dashboard.
func NewAuthHandler(users *repository.UserRepository, login *line.LoginClient, manager *auth.TokenManager, frontendOrigin, defaultCurrency string, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthHandler{
		Users:           users,
		Login:           login,
		TokenManager:    manager,
		FrontendOrigin:  frontendOrigin,
		DefaultCurrency: defaultCurrency,
		Logger:          logger,
	}
}

// LoginRedirect sends the browser to LINE's authorization page.
func (h *AuthHandler) LoginRedirect(c echo.Context) error {
	if !h.Login.Configured() {
		return serverError(c)
	}

	state, err := randomState()
	if err != nil {
		return serverError(c)
	}

	return c.Redirect(http.StatusFound, h.Login.AuthorizeURL(state))
}

// Callback exchanges the authorization code, ensures the local user and
// redirects back to the frontend carrying a signed token.
func (h *AuthHandler) Callback(c echo.Context) error {
	if loginError := c.QueryParam("error"); loginError != "" {
		return h.redirectWithError(c, loginError)
	}

	code := c.QueryParam("code")
	if code == "" {
		return h.redirectWithError(c, "missing_code")
	}

	profile, err := h.Login.ExchangeCode(c.Request().Context(), code)
	if err != nil {
		h.Logger.Error("line login exchange failed", slog.String("error", err.Error()))
		return h.redirectWithError(c, "login_failed")
	}

	user, err := h.Users.Ensure(c.Request().Context(), profile.LineUserID, h.DefaultCurrency)
	if err != nil {
		h.Logger.Error("ensure user on login failed", slog.String("error", err.Error()))
		return h.redirectWithError(c, "login_failed")
	}

	if profile.DisplayName != "" && user.DisplayName == nil {
		if err := h.Users.SetDisplayNameIfEmpty(c.Request().Context(), user.ID, profile.DisplayName); err != nil {
			h.Logger.Warn("backfill display name failed", slog.String("error", err.Error()))
		}
	}

	token, _, err := h.TokenManager.NewToken(user.ID)
	if err != nil {
		h.Logger.Error("sign token failed", slog.String("error", err.Error()))
		return h.redirectWithError(c, "login_failed")
	}

	return c.Redirect(http.StatusFound, frontendURL(h.FrontendOrigin, "token", token))
}

func (h *AuthHandler) redirectWithError(c echo.Context, loginError string) error {
	return c.Redirect(http.StatusFound, frontendURL(h.FrontendOrigin, "login_error", loginError))
}

func frontendURL(origin, key, value string) string {
	target, err := url.Parse(origin)
	if err != nil {
		return origin
	}
	query := target.Query()
	query.Set(key, value)
	target.RawQuery = query.Encode()
	return target.String()
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
