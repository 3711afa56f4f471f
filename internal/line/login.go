package line

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAccessBaseURL = "https://access.line.me"

// LoginClient drives the LINE Login authorization-code flow used by the
// dashboard: redirect, code-for-token exchange and id_token verification.
type LoginClient struct {
	channelID     string
	channelSecret string
	callbackURL   string
	apiBaseURL    string
	accessBaseURL string
	httpClient    *http.Client
}

// Profile is the verified identity extracted from an id_token.
type Profile struct {
	LineUserID  string
	DisplayName string
}

type tokenResponse struct {
	IDToken string `json:"id_token"`
}

type verifyResponse struct {
	Sub  string `json:"sub"`
	Name string `json:"name"`
}

// NewLoginClient creates a LINE Login client. Empty base URLs select the
// production endpoints.
func NewLoginClient(channelID, channelSecret, callbackURL, apiBaseURL, accessBaseURL string, timeout time.Duration) *LoginClient {
	if apiBaseURL == "" {
		apiBaseURL = defaultAPIBaseURL
	}
	if accessBaseURL == "" {
		accessBaseURL = defaultAccessBaseURL
	}

	return &LoginClient{
		channelID:     channelID,
		channelSecret: channelSecret,
		callbackURL:   callbackURL,
		apiBaseURL:    strings.TrimRight(apiBaseURL, "/"),
		accessBaseURL: strings.TrimRight(accessBaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Configured reports whether Login credentials were provided.
func (c *LoginClient) Configured() bool {
	return c.channelID != "" && c.channelSecret != ""
}

// AuthorizeURL builds the authorization redirect for the given state.
func (c *LoginClient) AuthorizeURL(state string) string {
	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("client_id", c.channelID)
	query.Set("redirect_uri", c.callbackURL)
	query.Set("state", state)
	query.Set("scope", "openid profile")

	return fmt.Sprintf("%s/oauth2/v2.1/authorize?%s", c.accessBaseURL, query.Encode())
}

// ExchangeCode trades the authorization code for an id_token and verifies it
// through LINE's verify endpoint, returning the user's identity.
func (c *LoginClient) ExchangeCode(ctx context.Context, code string) (Profile, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.callbackURL)
	form.Set("client_id", c.channelID)
	form.Set("client_secret", c.channelSecret)

	var token tokenResponse
	if err := c.postForm(ctx, c.apiBaseURL+"/oauth2/v2.1/token", form, &token); err != nil {
		return Profile{}, fmt.Errorf("exchange code: %w", err)
	}
	if token.IDToken == "" {
		return Profile{}, errors.New("token response has no id_token")
	}

	verify := url.Values{}
	verify.Set("id_token", token.IDToken)
	verify.Set("client_id", c.channelID)

	var verified verifyResponse
	if err := c.postForm(ctx, c.apiBaseURL+"/oauth2/v2.1/verify", verify, &verified); err != nil {
		return Profile{}, fmt.Errorf("verify id_token: %w", err)
	}
	if verified.Sub == "" {
		return Profile{}, errors.New("id_token has no subject")
	}

	return Profile{
		LineUserID:  verified.Sub,
		DisplayName: verified.Name,
	}, nil
}

func (c *LoginClient) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return err
	}

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.Unmarshal(body, out)
}
