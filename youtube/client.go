// Package youtube implements a client for the caption tracks that YouTube
// publishes alongside its videos.
//
// A typical use lists the tracks for a video, picks one, and fetches its
// timed text:
//
//	c := youtube.New()
//	list, err := c.List(ctx, "dQw4w9WgXcQ")
//	...
//	t, err := list.Find([]string{"de", "en"})
//	...
//	snips, err := c.Fetch(ctx, t, youtube.FetchOptions{})
package youtube

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the base URL for the YouTube site.
const DefaultBaseURL = "https://www.youtube.com"

// DefaultAcceptLanguage is the Accept-Language header sent with each request.
// It controls the language of track display names in the responses.
const DefaultAcceptLanguage = "en-US"

// A Client fetches caption track listings and timed text from YouTube.
// A zero Client is not ready for use; construct one with New.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	acceptLanguage string
	userAgent      string
	log            *slog.Logger
}

// An Option configures a Client during construction.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests. The client is copied,
// so later options such as WithProxy do not modify hc.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.httpClient = &cp
	}
}

// WithBaseURL overrides the site base URL. This is mainly useful in tests.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(base, "/") }
}

// WithProxy routes all requests through the specified proxy.
func WithProxy(proxy *url.URL) Option {
	return func(c *Client) {
		if proxy == nil {
			return
		}
		c.httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxy)}
	}
}

// WithTimeout bounds the duration of each individual request. A zero value
// means no limit.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithAcceptLanguage sets the Accept-Language header sent with requests.
func WithAcceptLanguage(lang string) Option {
	return func(c *Client) { c.acceptLanguage = lang }
}

// WithUserAgent sets the User-Agent header sent with requests.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets the logger for debug output. By default nothing is logged.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// New constructs a new Client with the given options.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient:     &http.Client{},
		baseURL:        DefaultBaseURL,
		acceptLanguage: DefaultAcceptLanguage,
		log:            slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}

	// The consent interstitial is answered with a cookie, which has to be
	// replayed on the requests that follow.
	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err == nil {
			c.httpClient.Jar = jar
		}
	}
	return c
}

func (c *Client) newRequest(ctx context.Context, method, url string, body []byte) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return nil, err
	}
	if c.acceptLanguage != "" {
		req.Header.Set("Accept-Language", c.acceptLanguage)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) loadRequest(req *http.Request) ([]byte, error) {
	rsp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer rsp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rsp.Body); err != nil {
		return nil, err
	}
	if rsp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: req.URL.Redacted(), Code: rsp.StatusCode, Status: rsp.Status}
	}
	return buf.Bytes(), nil
}
