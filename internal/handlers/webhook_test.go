package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/maialona/line-budget-bot/internal/bot"
)

func webhookTestHandler() *WebhookHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	botHandler := bot.NewHandler(nil, nil, nil, nil, nil, logger, "其他", "TWD")
	return NewWebhookHandler(botHandler, "channel-secret", logger)
}

func webhookRequest(body, signature string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/line/webhook", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if signature != "" {
		req.Header.Set(signatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// TestReceiveAcceptsSignedDelivery verifies a correctly signed payload is
// acknowledged with 200.
func TestReceiveAcceptsSignedDelivery(t *testing.T) {
	body := `{"destination":"U000","events":[]}`

	mac := hmac.New(sha256.New, []byte("channel-secret"))
	mac.Write([]byte(body))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	c, rec := webhookRequest(body, signature)
	if err := webhookTestHandler().Receive(c); err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

// TestReceiveRejectsBadSignature verifies an unsigned or mis-signed delivery
// is rejected before the payload is parsed.
func TestReceiveRejectsBadSignature(t *testing.T) {
	for _, signature := range []string{"", "bm90LXRoZS1zaWduYXR1cmU="} {
		c, rec := webhookRequest(`{"events":[]}`, signature)
		if err := webhookTestHandler().Receive(c); err != nil {
			t.Fatalf("Receive() error = %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("signature %q: status = %d, want 400", signature, rec.Code)
		}
	}
}

// TestReceiveRejectsMalformedJSON verifies a signed but unparsable body is a
// 400, not a panic or a 500.
func TestReceiveRejectsMalformedJSON(t *testing.T) {
	body := `{"events":`

	mac := hmac.New(sha256.New, []byte("channel-secret"))
	mac.Write([]byte(body))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	c, rec := webhookRequest(body, signature)
	if err := webhookTestHandler().Receive(c); err != nil {
		t.Fatalf("Receive() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
