package xapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ExchangeCode_UpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
	}))
	defer upstream.Close()

	client := New(Config{
		ClientID:     "id",
		ClientSecret: "secret",
		APIBaseURL:   upstream.URL,
	})

	_, err := client.ExchangeCode(context.Background(), "c", "v", "https://app/callback")
	require.Error(t, err)

	var upstreamErr *UpstreamError
	require.True(t, errors.As(err, &upstreamErr))
	assert.Equal(t, http.StatusUnauthorized, upstreamErr.StatusCode)
	assert.JSONEq(t, `{"error":"invalid_client"}`, string(upstreamErr.Body))
}

func TestClient_ExchangeCode_TransportError(t *testing.T) {
	client := New(Config{
		ClientID:     "id",
		ClientSecret: "secret",
		APIBaseURL:   "http://127.0.0.1:1",
	})

	_, err := client.ExchangeCode(context.Background(), "c", "v", "https://app/callback")
	require.Error(t, err)

	var upstreamErr *UpstreamError
	assert.False(t, errors.As(err, &upstreamErr))
}

func TestClient_ReplyBodyShape(t *testing.T) {
	var captured string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = string(body)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1"}}`))
	}))
	defer upstream.Close()

	client := New(Config{APIBaseURL: upstream.URL})

	_, err := client.ReplyToTweet(context.Background(), "tok", "123", "LFG!")
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"LFG!","reply":{"in_reply_to_tweet_id":"123"}}`, captured)
}

func TestClient_PostBodyOmitsReply(t *testing.T) {
	var captured string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		captured = string(body)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1"}}`))
	}))
	defer upstream.Close()

	client := New(Config{APIBaseURL: upstream.URL})

	_, err := client.PostTweet(context.Background(), "tok", "gm")
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"gm"}`, captured)
}

func TestClient_HasCredentials(t *testing.T) {
	assert.True(t, New(Config{ClientID: "id", ClientSecret: "secret"}).HasCredentials())
	assert.False(t, New(Config{ClientID: "id"}).HasCredentials())
	assert.False(t, New(Config{}).HasCredentials())
}
