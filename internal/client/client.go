// Package client talks to the remote trips API:
//
//	GET <base>/v1/trips?sortBy=&sortOrder=&page=&limit=&titleFilter=&...
//	GET <base>/v1/trips/<id>
//
// Query strings are styled the way oapi-codegen generated clients style
// them (form style, explode for scalars, comma-joined arrays).
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
	"golang.org/x/time/rate"

	"github.com/pkordes/trip-browser/internal/domain"
)

// DefaultTimeout bounds a single upstream request when no http.Client is supplied.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is kept for the log.
const maxErrorBody = 512

// Client is an HTTP client for the trips API. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	http    *http.Client
	limiter *rate.Limiter
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client (which has DefaultTimeout).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit throttles outgoing requests to rps per second with the given
// burst. A non-positive rps leaves requests unthrottled.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger used for upstream failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New constructs a Client for the API rooted at baseURL.
// Returns domain.ErrValidation if baseURL is not an absolute http(s) URL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("client.New: %w: base URL %q must be an absolute http(s) URL", domain.ErrValidation, baseURL)
	}
	c := &Client{
		base: u,
		http: &http.Client{Timeout: DefaultTimeout},
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// GetList fetches one page of trips for q.
// Every failure wraps domain.ErrFetchFailed.
func (c *Client) GetList(ctx context.Context, q domain.QueryParams) (domain.TripPage, error) {
	query, err := listQuery(q)
	if err != nil {
		return domain.TripPage{}, fmt.Errorf("client.Client.GetList: %w: %w", domain.ErrFetchFailed, err)
	}
	u := c.base.JoinPath("v1", "trips")
	u.RawQuery = query.Encode()

	var page domain.TripPage
	if err := c.getJSON(ctx, u, &page); err != nil {
		return domain.TripPage{}, fmt.Errorf("client.Client.GetList: %w", err)
	}
	if page.Items == nil {
		page.Items = []domain.Trip{}
	}
	return page, nil
}

// GetDetail fetches a single trip by id. A 404 wraps both
// domain.ErrFetchFailed and domain.ErrNotFound.
func (c *Client) GetDetail(ctx context.Context, id string) (domain.Trip, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Trip{}, fmt.Errorf("client.Client.GetDetail: %w: %w", domain.ErrFetchFailed, domain.ErrNotFound)
	}
	u := c.base.JoinPath("v1", "trips", url.PathEscape(id))

	var trip domain.Trip
	if err := c.getJSON(ctx, u, &trip); err != nil {
		return domain.Trip{}, fmt.Errorf("client.Client.GetDetail: %w", err)
	}
	return trip, nil
}

// getJSON performs a GET and decodes a 2xx JSON body into dest.
func (c *Client) getJSON(ctx context.Context, u *url.URL, dest any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limit: %w", domain.ErrFetchFailed, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", domain.ErrFetchFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: GET %s: %w", domain.ErrFetchFailed, u.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.WarnContext(ctx, "upstream returned error status",
			"path", u.Path,
			"status", resp.StatusCode,
			"body", string(body),
		)
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %w: GET %s", domain.ErrFetchFailed, domain.ErrNotFound, u.Path)
		}
		return fmt.Errorf("%w: GET %s: status %d", domain.ErrFetchFailed, u.Path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: decode %s: %w", domain.ErrFetchFailed, u.Path, err)
	}
	return nil
}

// listQuery builds the list query string. Required parameters are always
// present; absent filters are left out entirely.
func listQuery(q domain.QueryParams) (url.Values, error) {
	values := url.Values{}
	add := func(name string, value any) error {
		return addQueryParam(values, name, value, true)
	}

	if err := add(domain.ParamSortBy, string(q.Sort.Field)); err != nil {
		return nil, err
	}
	if err := add(domain.ParamSortOrder, string(q.Sort.Direction)); err != nil {
		return nil, err
	}
	if err := add(domain.ParamPage, q.Pagination.Page); err != nil {
		return nil, err
	}
	if err := add(domain.ParamLimit, q.Pagination.Limit); err != nil {
		return nil, err
	}

	f := q.Filter
	if f.Title != "" {
		if err := add(domain.ParamTitleFilter, f.Title); err != nil {
			return nil, err
		}
	}
	if f.MinPrice != nil {
		if err := add(domain.ParamMinPrice, *f.MinPrice); err != nil {
			return nil, err
		}
	}
	if f.MaxPrice != nil {
		if err := add(domain.ParamMaxPrice, *f.MaxPrice); err != nil {
			return nil, err
		}
	}
	if f.MinRating != nil {
		if err := add(domain.ParamMinRating, *f.MinRating); err != nil {
			return nil, err
		}
	}
	if f.MaxRating != nil {
		if err := add(domain.ParamMaxRating, *f.MaxRating); err != nil {
			return nil, err
		}
	}
	if len(f.Tags) > 0 {
		if err := addQueryParam(values, domain.ParamTags, f.Tags, false); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// addQueryParam styles value as a form query parameter and merges it into values.
func addQueryParam(values url.Values, name string, value any, explode bool) error {
	frag, err := runtime.StyleParamWithLocation("form", explode, name, runtime.ParamLocationQuery, value)
	if err != nil {
		return fmt.Errorf("style %s: %w", name, err)
	}
	parsed, err := url.ParseQuery(frag)
	if err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	for k, vs := range parsed {
		for _, v := range vs {
			values.Add(k, v)
		}
	}
	return nil
}
