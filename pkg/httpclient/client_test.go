package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderPresets(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(BrowserClient, WithAcceptLanguage("ro,ro-RO;q=0.9")).Fetch(context.Background(), srv.URL, 1024)
	require.NoError(t, err)
	assert.Contains(t, got.Get("User-Agent"), "Mozilla/5.0")
	assert.Equal(t, "ro,ro-RO;q=0.9", got.Get("Accept-Language"))
	assert.Contains(t, got.Get("Accept"), "text/html")

	_, err = NewClient(APIClient, WithUserAgent("curator-test/1")).Fetch(context.Background(), srv.URL, 1024)
	require.NoError(t, err)
	assert.Equal(t, "curator-test/1", got.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.Empty(t, got.Get("Accept-Language"))
}

func TestFetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("0123456789"))
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient(APIClient)
	resp, err := c.Fetch(context.Background(), srv.URL+"/start", 4)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(resp.Body))
	assert.Equal(t, "text/plain", resp.ContentType)
	assert.Equal(t, srv.URL+"/final", resp.FinalURL)

	_, err = c.Fetch(context.Background(), srv.URL+"/gone", 4)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusGone, statusErr.StatusCode)
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(APIClient, WithTimeout(50*time.Millisecond)).Fetch(context.Background(), srv.URL, 16)
	assert.Error(t, err)
}

func TestUserAgentAccessor(t *testing.T) {
	assert.Equal(t, defaultAPIUserAgent, NewClient(APIClient).UserAgent())
	assert.Equal(t, defaultBrowserUserAgent, NewClient(BrowserClient).UserAgent())
	assert.Equal(t, "x", NewClient(BrowserClient, WithUserAgent("x")).UserAgent())
}
