package xapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const defaultAPIBaseURL = "https://api.twitter.com"

type Config struct {
	ClientID     string
	ClientSecret string
	APIBaseURL   string
}

// Client is a single-shot passthrough to the X REST API: no retries, no
// token caching, no rate-limit handling. Callers supply their own bearer
// tokens; the client only holds the app credentials used for the OAuth
// code exchange.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Client {
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = defaultAPIBaseURL
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// HasCredentials reports whether the app credentials needed for the
// OAuth code exchange are configured.
func (c *Client) HasCredentials() bool {
	return c.cfg.ClientID != "" && c.cfg.ClientSecret != ""
}

// UpstreamError carries the provider's status and body verbatim so
// handlers can relay them to the caller.
type UpstreamError struct {
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("x api returned status %d: %s", e.StatusCode, e.Body)
}

// ExchangeCode trades a PKCE authorization code for an access token. The
// provider's token payload is returned as-is so callers can relay it
// verbatim.
func (c *Client) ExchangeCode(ctx context.Context, code, codeVerifier, redirectURI string) (json.RawMessage, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("code_verifier", codeVerifier)
	form.Set("redirect_uri", redirectURI)
	form.Set("client_id", c.cfg.ClientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.APIBaseURL+"/2/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.ClientID, c.cfg.ClientSecret)

	return c.do(req)
}

type tweetRequest struct {
	Text  string      `json:"text"`
	Reply *tweetReply `json:"reply,omitempty"`
}

type tweetReply struct {
	InReplyToTweetID string `json:"in_reply_to_tweet_id"`
}

func (c *Client) PostTweet(ctx context.Context, accessToken, text string) (json.RawMessage, error) {
	return c.createTweet(ctx, accessToken, tweetRequest{Text: text})
}

func (c *Client) ReplyToTweet(ctx context.Context, accessToken, tweetID, text string) (json.RawMessage, error) {
	return c.createTweet(ctx, accessToken, tweetRequest{
		Text:  text,
		Reply: &tweetReply{InReplyToTweetID: tweetID},
	})
}

func (c *Client) createTweet(ctx context.Context, accessToken string, request tweetRequest) (json.RawMessage, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.APIBaseURL+"/2/tweets", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return c.do(req)
}

func (c *Client) UserProfile(ctx context.Context, accessToken string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.APIBaseURL+"/2/users/me?user.fields=id,name,username,profile_image_url", nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: body}
	}

	return body, nil
}
