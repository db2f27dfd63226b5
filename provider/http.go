package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

// ---------------------------------------------------------------------------
// HTTP client
// ---------------------------------------------------------------------------

// newClient returns a resty client that retries rate limits and server
// errors with exponential backoff. Proxies come from HTTP_PROXY/HTTPS_PROXY.
func newClient(id string, opts Options) *resty.Client {
	log := opts.logger().WithField("provider", id)
	return resty.New().
		SetTimeout(opts.timeout()).
		SetRetryCount(opts.maxRetries()).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(65 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil || r == nil {
				return err != nil
			}
			retry := r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
			if retry {
				log.WithField("status", r.StatusCode()).Debug("retrying request")
			}
			return retry
		}).
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			log.WithFields(logrus.Fields{"method": r.Method, "url": r.URL}).Debug("request")
			return nil
		})
}

// checkResponse turns a transport error or non-2xx status into an error.
func checkResponse(id string, resp *resty.Response, err error) error {
	if err != nil {
		return fmt.Errorf("%s: request failed: %w", id, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s: API returned %s: %s", id, resp.Status(), truncate(resp.String(), 300))
	}
	return nil
}

// endpoint joins a base URL and a path without doubling slashes.
func endpoint(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// isLocalURL reports whether raw points at the local machine.
func isLocalURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// ---------------------------------------------------------------------------
// Supported language lists
// ---------------------------------------------------------------------------

// languageCache memoises a fetched language table. A failed fetch is not
// cached so the next call tries again.
type languageCache struct {
	mu    sync.Mutex
	table map[string]string
	fetch func(ctx context.Context) (map[string]string, error)
}

func (c *languageCache) get(ctx context.Context) (map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.table != nil {
		return c.table, nil
	}
	table, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}
	if len(table) == 0 {
		return nil, fmt.Errorf("empty language list")
	}
	c.table = table
	return table, nil
}

// googleCodes are the languages of the public Google Translate endpoint.
// MyMemory and chat models accept the same codes.
var googleCodes = []string{
	"af", "sq", "am", "ar", "hy", "az", "eu", "be", "bn", "bs", "bg", "ca",
	"ceb", "ny", "zh-CN", "zh-TW", "co", "hr", "cs", "da", "nl", "en", "eo",
	"et", "tl", "fi", "fr", "fy", "gl", "ka", "de", "el", "gu", "ht", "ha",
	"haw", "iw", "hi", "hmn", "hu", "is", "ig", "id", "ga", "it", "ja", "jw",
	"kn", "kk", "km", "ko", "ku", "ky", "lo", "la", "lv", "lt", "lb", "mk",
	"mg", "ms", "ml", "mt", "mi", "mr", "mn", "my", "ne", "no", "ps", "fa",
	"pl", "pt", "pa", "ro", "ru", "sm", "gd", "sr", "st", "sn", "sd", "si",
	"sk", "sl", "so", "es", "su", "sw", "sv", "tg", "ta", "te", "th", "tr",
	"uk", "ur", "uz", "vi", "cy", "xh", "yi", "yo", "zu",
}
