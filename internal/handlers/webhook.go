package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/maialona/line-budget-bot/internal/bot"
	"github.com/maialona/line-budget-bot/internal/line"
)

const signatureHeader = "X-Line-Signature"

type WebhookHandler struct {
	Bot           *bot.Handler
	ChannelSecret string
	Logger        *slog.Logger
}

// NewWebhookHandler creates the LINE webhook endpoint.
func NewWebhookHandler(botHandler *bot.Handler, channelSecret string, logger *slog.Logger) *WebhookHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &WebhookHandler{
		Bot:           botHandler,
		ChannelSecret: channelSecret,
		Logger:        logger,
	}
}

// Receive validates the delivery signature against the raw body and hands
// the events to the bot. The body is read before any binding because the
// signature covers the exact bytes on the wire.
func (h *WebhookHandler) Receive(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return badRequest(c, "unreadable body")
	}

	if !line.ValidateSignature(h.ChannelSecret, body, c.Request().Header.Get(signatureHeader)) {
		h.Logger.Warn("webhook signature mismatch", slog.String("remote_ip", c.RealIP()))
		return badRequest(c, "invalid signature")
	}

	var req line.WebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return badRequest(c, "invalid payload")
	}

	h.Bot.HandleEvents(c.Request().Context(), req.Events)

	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
