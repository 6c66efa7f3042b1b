// Package session is the HTTP collaborator shared by the extractors: one
// colly collector per site whose cookie jar, politeness delay and request
// timeout are reused by every worker in a batch.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

var (
	// ErrHTTPStatus is returned for responses outside the 2xx range.
	ErrHTTPStatus = errors.New("unexpected http status")

	// ErrHandshake is returned when the landing page of a site cannot be fetched.
	ErrHandshake = errors.New("session handshake failed")
)

// Config configures a Session.
type Config struct {
	UserAgent string
	// Timeout bounds every request. Default: 10s.
	Timeout time.Duration
	// Delay is slept after each response before the next request on the
	// same session may start.
	Delay time.Duration
	// Parallelism caps concurrent requests on the session. Default: 2.
	Parallelism int
	// RequestsPerSecond caps the request rate across all workers; zero or
	// negative means unlimited.
	RequestsPerSecond float64
	Burst             int
}

func (c *Config) defaults() {
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Delay < 0 {
		c.Delay = 0
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 2
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
}

// Page is a fetched document decoded to UTF-8.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte
	// Encoding is the charset the body was decoded from.
	Encoding string
}

// Session wraps a colly collector. It is safe for concurrent use: each Get
// runs on a clone that shares the HTTP backend, cookie jar and limit rules of
// the parent, and headers are snapshotted under a lock before every request.
type Session struct {
	collector *colly.Collector
	limiter   *rate.Limiter
	delay     time.Duration
	logger    *slog.Logger

	mu      sync.RWMutex
	headers http.Header
}

// New creates a Session. A nil logger means slog.Default().
func New(cfg Config, logger *slog.Logger) (*Session, error) {
	cfg.defaults()
	if logger == nil {
		logger = slog.Default()
	}

	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(cfg.Timeout)
	// Status checks happen in Get, so every 2xx counts as success.
	c.ParseHTTPErrorResponse = true

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: cfg.Parallelism,
		Delay:       cfg.Delay,
	}); err != nil {
		return nil, fmt.Errorf("limit rule: %w", err)
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Session{
		collector: c,
		limiter:   rate.NewLimiter(limit, cfg.Burst),
		delay:     cfg.Delay,
		logger:    logger,
		headers:   http.Header{},
	}, nil
}

// Delay returns the politeness delay applied after every response.
func (s *Session) Delay() time.Duration {
	return s.delay
}

// SetHeader sets a header sent with every subsequent request. Requests
// already in flight keep the headers they started with.
func (s *Session) SetHeader(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.headers.Set(key, value)
}

func (s *Session) headerSnapshot() http.Header {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.headers.Clone()
}

// Get fetches url. Non-2xx responses and transport failures are returned as
// errors; callers decide whether that is fatal.
func (s *Session) Get(ctx context.Context, url string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	headers := s.headerSnapshot()
	c := s.collector.Clone()

	var (
		page     *Page
		fetchErr error
		ctype    string
	)

	c.OnRequest(func(r *colly.Request) {
		for k, vs := range headers {
			r.Headers.Del(k)
			for _, v := range vs {
				r.Headers.Add(k, v)
			}
		}
	})

	c.OnResponse(func(r *colly.Response) {
		if r.StatusCode < 200 || r.StatusCode > 299 {
			fetchErr = fmt.Errorf("%w: %d %s", ErrHTTPStatus, r.StatusCode, url)
			return
		}
		page = &Page{
			URL:        r.Request.URL.String(),
			StatusCode: r.StatusCode,
			Body:       r.Body,
		}
		ctype = r.Headers.Get("Content-Type")
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			fetchErr = fmt.Errorf("%w: %d %s", ErrHTTPStatus, r.StatusCode, url)
			return
		}
		fetchErr = fmt.Errorf("get %s: %w", url, err)
	})

	start := time.Now()
	if err := c.Visit(url); err != nil && fetchErr == nil {
		fetchErr = fmt.Errorf("get %s: %w", url, err)
	}
	if fetchErr != nil {
		s.logger.Debug("fetch failed", "url", url, "elapsed", time.Since(start), "error", fetchErr)
		return nil, fetchErr
	}
	if page == nil {
		return nil, fmt.Errorf("get %s: no response", url)
	}

	body, enc, err := decodeBody(page.Body, ctype)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	page.Body = body
	page.Encoding = enc

	s.logger.Debug("fetched",
		"url", page.URL,
		"status", page.StatusCode,
		"encoding", page.Encoding,
		"bytes", len(page.Body),
		"elapsed", time.Since(start),
	)
	return page, nil
}

// Handshake fetches a landing page so that the site issues the cookies its
// product pages expect.
func (s *Session) Handshake(ctx context.Context, url string) error {
	if _, err := s.Get(ctx, url); err != nil {
		return fmt.Errorf("%w: %w", ErrHandshake, err)
	}
	return nil
}
