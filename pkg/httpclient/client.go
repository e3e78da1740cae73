package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ClientType represents the type of HTTP client configuration
type ClientType string

const (
	// BrowserClient uses browser-like headers. Article sites and the watch page
	// answer these with the full HTML document.
	BrowserClient ClientType = "browser"

	// APIClient sends a plain identifying User-Agent and asks for JSON.
	// Used for the oEmbed endpoint.
	APIClient ClientType = "api"
)

const (
	// DefaultTimeout bounds every outbound call.
	DefaultTimeout = 10 * time.Second

	defaultAPIUserAgent     = "content-curator/1.0"
	defaultBrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxRedirects            = 10
)

// HTTPClient wraps an http.Client with configuration
type HTTPClient struct {
	client         *http.Client
	clientType     ClientType
	userAgent      string
	acceptLanguage string
}

// Option customizes an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *HTTPClient) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithAcceptLanguage sets the Accept-Language header sent by browser clients.
func WithAcceptLanguage(v string) Option {
	return func(c *HTTPClient) {
		if v != "" {
			c.acceptLanguage = v
		}
	}
}

// WithTransport swaps the round tripper. Tests use this to stub upstreams.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) {
		c.client.Transport = rt
	}
}

// NewClient creates a new HTTP client with the specified type
func NewClient(clientType ClientType, opts ...Option) *HTTPClient {
	client := &http.Client{
		Timeout: DefaultTimeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	c := &HTTPClient{
		client:         client,
		clientType:     clientType,
		acceptLanguage: "en-US,en;q=0.9",
	}
	switch clientType {
	case BrowserClient:
		c.userAgent = defaultBrowserUserAgent
	default:
		c.userAgent = defaultAPIUserAgent
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes an HTTP request with the appropriate headers for the client type
func (c *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	c.setHeaders(req)
	return c.client.Do(req)
}

// Get is a convenience method for GET requests
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Response is a fully read upstream reply.
type Response struct {
	Body        []byte
	ContentType string
	FinalURL    string
}

// StatusError reports a non-200 upstream reply.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// Fetch GETs rawURL and reads at most maxBytes of a 200 response.
// Any other status is returned as *StatusError.
func (c *HTTPClient) Fetch(ctx context.Context, rawURL string, maxBytes int64) (*Response, error) {
	resp, err := c.Get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &Response{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    finalURL,
	}, nil
}

// HTTP exposes the underlying client for libraries that take *http.Client.
// Requests sent through it bypass the header presets.
func (c *HTTPClient) HTTP() *http.Client {
	return c.client
}

// UserAgent reports the User-Agent header this client sends.
func (c *HTTPClient) UserAgent() string {
	return c.userAgent
}

// setHeaders sets the appropriate headers based on client type
func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)

	switch c.clientType {
	case BrowserClient:
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", c.acceptLanguage)
		req.Header.Set("Upgrade-Insecure-Requests", "1")

	case APIClient:
		req.Header.Set("Accept", "application/json")
	}
}

func drainAndClose(rc io.ReadCloser) {
	if rc == nil {
		return
	}
	_, _ = io.Copy(io.Discard, rc)
	_ = rc.Close()
}
