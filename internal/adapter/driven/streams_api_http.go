package driven

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/alorle/stream-bridge/internal/catalog"
)

const (
	defaultStreamsAPITimeout = 15 * time.Second
	defaultUserAgent         = "PlexRelay/1.0"
	defaultCatalogURL        = "https://ppv.wtf/api/streams"
	defaultDetailBaseURL     = "https://ppvs.su/api/streams"

	// authHeader is a literal "Auth" header, not Authorization.
	authHeader = "Auth"

	maxResponseBytes = 32 << 20
	maxErrorBodySize = 512
)

// ErrUnexpectedStatus is returned when the upstream answers with a non-2xx status.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// StreamsAPIOptions configures a StreamsAPIHTTPClient.
type StreamsAPIOptions struct {
	CatalogURL    string
	DetailBaseURL string
	AuthToken     string
	UserAgent     string
	// Timeout bounds each request. Ignored when a client is supplied.
	Timeout time.Duration
	// DetailRateLimit caps detail requests per second. Zero means unlimited.
	DetailRateLimit float64
}

// StreamsAPIHTTPClient talks to the upstream streams API over HTTP.
// It implements the driven.StreamsAPI port.
type StreamsAPIHTTPClient struct {
	catalogURL    string
	detailBaseURL string
	authToken     string
	userAgent     string
	client        *http.Client
	limiter       *rate.Limiter
}

// NewStreamsAPIHTTPClient creates a new client. Empty URLs and user agent fall
// back to the defaults. If client is nil, a client with opts.Timeout (15s when
// unset) is created.
func NewStreamsAPIHTTPClient(opts StreamsAPIOptions, client *http.Client) *StreamsAPIHTTPClient {
	if opts.CatalogURL == "" {
		opts.CatalogURL = defaultCatalogURL
	}
	if opts.DetailBaseURL == "" {
		opts.DetailBaseURL = defaultDetailBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultStreamsAPITimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.DetailRateLimit > 0 {
		limit = rate.Limit(opts.DetailRateLimit)
	}

	return &StreamsAPIHTTPClient{
		catalogURL:    opts.CatalogURL,
		detailBaseURL: strings.TrimRight(opts.DetailBaseURL, "/"),
		authToken:     opts.AuthToken,
		userAgent:     opts.UserAgent,
		client:        client,
		limiter:       rate.NewLimiter(limit, 1),
	}
}

// FetchCatalog retrieves the full stream listing from the catalog endpoint.
func (c *StreamsAPIHTTPClient) FetchCatalog(ctx context.Context) (catalog.Catalog, error) {
	body, err := c.get(ctx, c.catalogURL)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("fetching catalog: %w", err)
	}

	cat, err := catalog.Decode(body)
	if err != nil {
		return catalog.Catalog{}, fmt.Errorf("fetching catalog: parsing response JSON: %w", err)
	}
	return cat, nil
}

// detailResponse is the envelope of the per-stream detail endpoint.
type detailResponse struct {
	Success bool        `json:"success"`
	Data    *detailData `json:"data"`
}

type detailData struct {
	VIPMpegTS string `json:"vip_mpegts"`
}

// FetchPlaybackURL retrieves the vip_mpegts URL of one stream.
func (c *StreamsAPIHTTPClient) FetchPlaybackURL(ctx context.Context, id catalog.StreamID) (string, error) {
	if c.authToken == "" {
		return "", catalog.ErrMissingCredential
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for detail rate limit: %w", err)
	}

	endpoint := c.detailBaseURL + "/" + url.PathEscape(id.String())

	var resp detailResponse
	if err := c.getJSON(ctx, endpoint, &resp); err != nil {
		return "", fmt.Errorf("fetching stream %s detail: %w", id, err)
	}

	if !resp.Success {
		return "", catalog.ErrUnsuccessful
	}
	if resp.Data == nil {
		return "", catalog.ErrMissingDetailData
	}
	if resp.Data.VIPMpegTS == "" {
		return "", catalog.ErrMissingPlaybackURL
	}

	return resp.Data.VIPMpegTS, nil
}

// getJSON issues a GET with the upstream headers and decodes a 2xx JSON body into v.
func (c *StreamsAPIHTTPClient) getJSON(ctx context.Context, endpoint string, v any) error {
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("parsing response JSON: %w", err)
	}

	return nil
}

// get issues a GET with the upstream headers and returns the 2xx body.
func (c *StreamsAPIHTTPClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	if c.authToken != "" {
		req.Header.Set(authHeader, c.authToken)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, fmt.Errorf("%w: %s: %s", ErrUnexpectedStatus, resp.Status, strings.TrimSpace(string(snippet)))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return body, nil
}
