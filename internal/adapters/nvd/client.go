package nvd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/lcalzada-xor/cveadvisor/internal/core/domain"
	"github.com/lcalzada-xor/cveadvisor/internal/core/ports"
	"github.com/lcalzada-xor/cveadvisor/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://services.nvd.nist.gov/rest/json/cves/2.0"
	UserAgent      = "CVEAdvisor/1.0"

	// NVD accepts ISO-8601 with millisecond precision.
	timeLayout = "2006-01-02T15:04:05.000Z"

	defaultMaxRetries     = 3
	defaultInitialBackoff = 2 * time.Second
	maxErrorBody          = 4 << 10
)

// NVD allows 50 requests per rolling 30s with an API key.
var defaultRateLimit = rate.Every(30 * time.Second / 50)

// Client fetches pages from the NVD CVE API 2.0.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	limiter        *rate.Limiter
	maxRetries     uint64
	initialBackoff time.Duration
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(limit, burst) }
}

// WithRetries bounds retries of throttled or unavailable responses.
func WithRetries(max uint64, initial time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = max
		c.initialBackoff = initial
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter:        rate.NewLimiter(defaultRateLimit, 1),
		maxRetries:     defaultMaxRetries,
		initialBackoff: defaultInitialBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPage requests one page of CVEs published inside the query window.
// Non-2xx responses surface as *domain.UpstreamError; 429 and 5xx are
// retried with exponential backoff first.
func (c *Client) FetchPage(ctx context.Context, q domain.FeedQuery) (*domain.FeedPage, error) {
	endpoint, err := c.pageURL(q)
	if err != nil {
		return nil, err
	}

	var page *domain.FeedPage
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(fmt.Errorf("rate limiter: %w", err))
		}

		p, err := c.do(ctx, endpoint, q.APIKey)
		if err != nil {
			var ue *domain.UpstreamError
			switch {
			case ctx.Err() != nil:
				return backoff.Permanent(ctx.Err())
			case errors.As(err, &ue) && !retryable(ue.StatusCode):
				return backoff.Permanent(err)
			}
			return err
		}
		page = p
		return nil
	}

	expBo := backoff.NewExponentialBackOff()
	expBo.InitialInterval = c.initialBackoff
	bo := backoff.WithContext(backoff.WithMaxRetries(expBo, c.maxRetries), ctx)

	notify := func(err error, wait time.Duration) {
		slog.Warn("Retrying NVD request", "start_index", q.StartIndex, "wait", wait, "error", err)
	}
	if err := backoff.RetryNotify(op, bo, notify); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *Client) pageURL(q domain.FeedQuery) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid NVD base URL: %w", err)
	}
	params := u.Query()
	params.Set("pubStartDate", q.PubStart.UTC().Format(timeLayout))
	params.Set("pubEndDate", q.PubEnd.UTC().Format(timeLayout))
	params.Set("resultsPerPage", strconv.Itoa(q.PageSize))
	params.Set("startIndex", strconv.Itoa(q.StartIndex))
	u.RawQuery = params.Encode()
	return u.String(), nil
}

func (c *Client) do(ctx context.Context, endpoint, apiKey string) (*domain.FeedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apiKey", apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		telemetry.FeedRequests.WithLabelValues("network_error").Inc()
		return nil, err
	}
	defer resp.Body.Close()
	telemetry.FeedRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := string(body)
		if msg == "" {
			// NVD reports most rejections in a header
			msg = resp.Header.Get("Message")
		}
		return nil, &domain.UpstreamError{StatusCode: resp.StatusCode, Status: resp.Status, Body: msg}
	}

	var page domain.FeedPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, backoff.Permanent(fmt.Errorf("decode NVD response: %w", err))
	}
	return &page, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

var _ ports.FeedClient = (*Client)(nil)
