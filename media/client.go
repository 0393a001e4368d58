package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-photos-proxy/internal/config"
	"github.com/jrsteele09/go-photos-proxy/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// ErrUnauthorized means the upstream rejected the bearer token (401 or 403).
var ErrUnauthorized = errors.New(errors.KindUnauthenticated, "upstream rejected the access token")

// Client calls the photo library REST API. It holds no credentials; every call is made with
// the access token it is given.
type Client struct {
	baseURL         string
	defaultPageSize int
	maxPageSize     int
	limiter         *RateLimiter
}

type ClientOption func(*Client)

func WithRateLimiter(l *RateLimiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

func NewClient(cfg config.MediaConfig, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:         strings.TrimSuffix(cfg.GetMediaBaseURL(), "/"),
		defaultPageSize: cfg.GetMediaDefaultPageSize(),
		maxPageSize:     cfg.GetMediaMaxPageSize(),
		limiter:         NewRateLimiter(cfg.GetMediaRateLimit(), cfg.GetMediaRateBurst()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageSize applies the default for non-positive sizes and clamps to the maximum.
func (c *Client) PageSize(n int) int {
	if n <= 0 {
		return c.defaultPageSize
	}
	if n > c.maxPageSize {
		return c.maxPageSize
	}
	return n
}

// List returns items in the library's chronological order.
func (c *Client) List(ctx context.Context, accessToken string, pageSize int, pageToken string) (Page, error) {
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(c.PageSize(pageSize)))
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}

	var page Page
	err := c.do(ctx, accessToken, http.MethodGet, "/v1/mediaItems?"+q.Encode(), nil, &page)
	return page, err
}

func (c *Client) Search(ctx context.Context, accessToken string, filter Filter, pageSize int, pageToken string) (Page, error) {
	body, err := json.Marshal(newSearchRequest(filter, c.PageSize(pageSize), pageToken))
	if err != nil {
		return Page{}, errors.Wrap(errors.KindInternal, err, "encoding search request")
	}

	var page Page
	err = c.do(ctx, accessToken, http.MethodPost, "/v1/mediaItems:search", body, &page)
	return page, err
}

func (c *Client) Get(ctx context.Context, accessToken, id string) (MediaItem, error) {
	if id == "" {
		return MediaItem{}, errors.New(errors.KindInvalidRequest, "media item id is required")
	}

	var item MediaItem
	err := c.do(ctx, accessToken, http.MethodGet, "/v1/mediaItems/"+url.PathEscape(id), nil, &item)
	return item, err
}

func (c *Client) do(ctx context.Context, accessToken, method, path string, body []byte, out interface{}) error {
	logger := zerolog.Ctx(ctx)

	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrap(errors.KindUpstreamRequestFailed, err, "media request throttled")
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(errors.KindInternal, err, "building media request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// A fresh client per call; the base transport may come from oauth2.HTTPClient in ctx.
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.KindUpstreamRequestFailed, err, "media request failed")
	}
	defer googleapi.CloseBody(resp)

	logger.Debug().Str("method", method).Str("path", req.URL.Path).Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).Msg("media request")

	if err := googleapi.CheckResponse(resp); err != nil {
		return c.upstreamError(resp, err)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(errors.KindUpstreamRequestFailed, err, "decoding media response")
	}
	return nil
}

func (c *Client) upstreamError(resp *http.Response, err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return errors.Wrap(errors.KindUpstreamRequestFailed, err, "media request failed")
	}

	switch gerr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("[media] %v: %w", gerr, ErrUnauthorized)
	case http.StatusTooManyRequests:
		c.limiter.RecordRateLimitError(retryAfter(resp))
		return errors.Wrap(errors.KindUpstreamRequestFailed, gerr, "media API rate limit exceeded")
	default:
		return errors.Wrap(errors.KindUpstreamRequestFailed, gerr, fmt.Sprintf("media API returned %d", gerr.Code))
	}
}

func retryAfter(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
