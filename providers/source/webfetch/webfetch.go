// Package webfetch retrieves a plot source from a URL. HTML pages are
// converted to Markdown so the model receives readable text instead of markup.
package webfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/leofalp/toonboard/internal/utils"
)

const (
	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second
	// DefaultUserAgent is the default User-Agent header value
	DefaultUserAgent = "toonboard-webfetch/1.0"
	// MaxBodySize is the maximum response body size (5MB)
	MaxBodySize = 5 * 1024 * 1024
	// DefaultMaxChars bounds the returned content, in runes.
	DefaultMaxChars = 6000
)

// ErrEmptyURL is returned by Fetch for a blank URL.
var ErrEmptyURL = errors.New("URL cannot be empty")

// Page is the fetched and converted content.
type Page struct {
	// URL is the final URL after redirects.
	URL string `json:"url"`
	// Content is Markdown for HTML pages, the raw body otherwise.
	Content string `json:"content"`
	// Truncated is true when Content was cut to the rune limit.
	Truncated bool `json:"truncated"`
}

// Fetcher downloads plot sources. The zero value is not usable; use New.
type Fetcher struct {
	client    *http.Client
	userAgent string
	maxChars  int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithMaxChars overrides DefaultMaxChars. Zero or less disables truncation.
func WithMaxChars(n int) Option {
	return func(f *Fetcher) {
		f.maxChars = n
	}
}

// New returns a Fetcher with bounded dial, TLS and header timeouts that
// follows up to ten redirects.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{
			Timeout: DefaultTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 10 * time.Second,
				IdleConnTimeout:       90 * time.Second,
				ForceAttemptHTTP2:     true,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects (>10)")
				}
				return nil
			},
		},
		userAgent: DefaultUserAgent,
		maxChars:  DefaultMaxChars,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves rawURL. Partial URLs such as "example.com/story" get an
// https:// prefix. Only 200 responses are accepted and bodies above
// MaxBodySize are rejected.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Page, error) {
	url := strings.TrimSpace(rawURL)
	if url == "" {
		return Page{}, ErrEmptyURL
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "https://" + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Page{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html, text/plain;q=0.9, */*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Warn("failed to close response body", "error", closeErr.Error(), "url", url)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return Page{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > MaxBodySize {
		return Page{}, fmt.Errorf("response body exceeds maximum size of %d bytes", MaxBodySize)
	}

	content := string(body)
	if isHTML(resp.Header.Get("Content-Type"), content) {
		content, err = htmltomarkdown.ConvertString(content)
		if err != nil {
			return Page{}, fmt.Errorf("failed to convert HTML to Markdown: %w", err)
		}
	}
	content = strings.TrimSpace(content)

	page := Page{URL: resp.Request.URL.String(), Content: content}
	if f.maxChars > 0 {
		if cut := utils.Excerpt(content, f.maxChars); len(cut) < len(content) {
			page.Content = cut
			page.Truncated = true
		}
	}
	return page, nil
}

func isHTML(contentType, body string) bool {
	if contentType != "" {
		return strings.Contains(strings.ToLower(contentType), "html")
	}
	head := strings.ToLower(strings.TrimSpace(utils.Excerpt(body, 512)))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}
