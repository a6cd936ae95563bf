package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"vibin_quest_backend/internal/xapi"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTracker struct {
	wallets []string
}

func (s *stubTracker) MarkReplyPosted(_ context.Context, walletAddress string) error {
	s.wallets = append(s.wallets, walletAddress)
	return nil
}

func newXTestRouter(upstreamURL string, tracker ReplyTracker) *gin.Engine {
	gin.SetMode(gin.TestMode)

	client := xapi.New(xapi.Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		APIBaseURL:   upstreamURL,
	})

	router := gin.New()
	NewXRoutes(router, client, tracker)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestOAuthCallback_MissingParams(t *testing.T) {
	var upstreamCalls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstreamCalls.Add(1)
	}))
	defer upstream.Close()

	router := newXTestRouter(upstream.URL, &stubTracker{})

	bodies := []string{
		`{"code_verifier":"v","redirect_uri":"https://app/callback"}`,
		`{"code":"c","redirect_uri":"https://app/callback"}`,
		`{"code":"c","code_verifier":"v"}`,
	}
	for _, body := range bodies {
		w := postJSON(t, router, "/api/x/oauth-callback", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "missing required parameters")
	}

	assert.Equal(t, int64(0), upstreamCalls.Load())
}

func TestOAuthCallback_MissingCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)

	client := xapi.New(xapi.Config{APIBaseURL: "http://127.0.0.1:0"})
	router := gin.New()
	NewXRoutes(router, client, &stubTracker{})

	w := postJSON(t, router, "/api/x/oauth-callback",
		`{"code":"c","code_verifier":"v","redirect_uri":"https://app/callback"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOAuthCallback_Success(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2/oauth2/token", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client-id", user)
		assert.Equal(t, "client-secret", pass)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "the-verifier", r.PostForm.Get("code_verifier"))
		assert.Equal(t, "https://app/callback", r.PostForm.Get("redirect_uri"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token_type":"bearer","access_token":"tok","expires_in":7200}`))
	}))
	defer upstream.Close()

	router := newXTestRouter(upstream.URL, &stubTracker{})

	w := postJSON(t, router, "/api/x/oauth-callback",
		`{"code":"the-code","code_verifier":"the-verifier","redirect_uri":"https://app/callback"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"token_type":"bearer","access_token":"tok","expires_in":7200}`, w.Body.String())
}

func TestOAuthCallback_UpstreamErrorRelayed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid_request","error_description":"Value passed for the authorization code was invalid."}`))
	}))
	defer upstream.Close()

	router := newXTestRouter(upstream.URL, &stubTracker{})

	w := postJSON(t, router, "/api/x/oauth-callback",
		`{"code":"bad","code_verifier":"v","redirect_uri":"https://app/callback"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_request")
}

func TestReplyTweet_DefaultText(t *testing.T) {
	var captured []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2/tweets", r.URL.Path)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		captured = body

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"456","text":"LFG!"}}`))
	}))
	defer upstream.Close()

	tracker := &stubTracker{}
	router := newXTestRouter(upstream.URL, tracker)

	w := postJSON(t, router, "/api/x/reply", `{"accessToken":"abc","tweetId":"123"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"text":"LFG!","reply":{"in_reply_to_tweet_id":"123"}}`, string(captured))
	assert.Empty(t, tracker.wallets)
}

func TestReplyTweet_MarksReplyPosted(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"456"}}`))
	}))
	defer upstream.Close()

	tracker := &stubTracker{}
	router := newXTestRouter(upstream.URL, tracker)

	w := postJSON(t, router, "/api/x/reply",
		`{"accessToken":"abc","tweetId":"123","walletAddress":"0xabc123"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"0xabc123"}, tracker.wallets)
}

func TestReplyTweet_RequiresTweetID(t *testing.T) {
	router := newXTestRouter("http://127.0.0.1:0", &stubTracker{})

	w := postJSON(t, router, "/api/x/reply", `{"accessToken":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostTweet_DefaultText(t *testing.T) {
	var captured []byte
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		captured = body

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"789"}}`))
	}))
	defer upstream.Close()

	router := newXTestRouter(upstream.URL, &stubTracker{})

	w := postJSON(t, router, "/api/x/post", `{"accessToken":"abc"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(captured), defaultPostText)
}

func TestUserProfile_ForwardsToken(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2/users/me", r.URL.Path)
		assert.Equal(t, "Bearer abc", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"1","username":"vibin_fan"}}`))
	}))
	defer upstream.Close()

	router := newXTestRouter(upstream.URL, &stubTracker{})

	w := postJSON(t, router, "/api/x/user-profile", `{"accessToken":"abc"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "vibin_fan")
}
