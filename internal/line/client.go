package line

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultAPIBaseURL = "https://api.line.me"

// Client calls the LINE Messaging API with a channel access token.
type Client struct {
	channelToken string
	baseURL      string
	httpClient   *http.Client
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type replyRequest struct {
	ReplyToken string        `json:"replyToken"`
	Messages   []textMessage `json:"messages"`
}

// NewClient creates a Messaging API client. An empty baseURL selects the
// production endpoint; tests point it at a local server.
func NewClient(channelToken, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = defaultAPIBaseURL
	}

	return &Client{
		channelToken: channelToken,
		baseURL:      strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ReplyText answers a webhook event with one plain-text message. Reply
// tokens are single-use and short-lived, so failures are returned to the
// caller for logging rather than retried.
func (c *Client) ReplyText(ctx context.Context, replyToken, text string) error {
	if strings.TrimSpace(c.channelToken) == "" {
		return errors.New("line channel access token is missing")
	}

	payload, err := json.Marshal(replyRequest{
		ReplyToken: replyToken,
		Messages:   []textMessage{{Type: MessageTypeText, Text: text}},
	})
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/v2/bot/message/reply", c.baseURL)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}

	request.Header.Set("Authorization", "Bearer "+c.channelToken)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 4096))
		return fmt.Errorf("line reply failed with status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	return nil
}
