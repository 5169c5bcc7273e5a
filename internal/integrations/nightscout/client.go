package nightscout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"glucose-skill/internal/domain"
)

const entriesPath = "/api/v1/entries/sgv.json"

var (
	// ErrNoReadings is returned when the service answers with an empty entry list.
	ErrNoReadings = errors.New("nightscout: no readings in response")
	// ErrMalformedResponse is returned when the body is not a JSON entry list.
	ErrMalformedResponse = errors.New("nightscout: malformed response")
	// ErrMissingField is returned when the latest entry lacks sgv or direction.
	ErrMissingField = errors.New("nightscout: latest entry missing field")
)

// entry is the subset of a Nightscout SGV entry the skill reads.
// Pointers distinguish an absent field from a zero value.
type entry struct {
	SGV       *int    `json:"sgv"`
	Direction *string `json:"direction"`
}

// tokenPayload is the expected JSON shape stored in SSM for the API token.
type tokenPayload struct {
	Token string `json:"token"`
}

type Getter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// HTTPStatusError captures non-200 responses from the CGM service.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("nightscout: unexpected status %q from %s: %s", e.Status, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client reads the latest sensor glucose entry from a Nightscout-compatible API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	getter      Getter
	paramPrefix string

	tokenMu     sync.Mutex
	tokenLoaded bool
	token       string
}

type Option func(*Client)

// WithHTTPClient overrides the transport. The default client sets no timeout;
// requests are bounded by the caller's context.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken sets the API token directly instead of loading it from SSM.
func WithToken(token string) Option {
	return func(c *Client) {
		token = strings.TrimSpace(token)
		if token == "" {
			return
		}
		c.token = token
		c.tokenLoaded = true
	}
}

// NewClient creates a Client for baseURL. Unless WithToken is given, the API
// token is fetched from SSM at <paramPrefix>/cgm-token and, once a fetch
// succeeds, reused for the lifetime of the process.
func NewClient(baseURL string, ps Getter, paramPrefix string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("nightscout: base url must not be empty")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("nightscout: invalid base url: %w", err)
	}
	c := &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{},
		getter:      ps,
		paramPrefix: strings.TrimRight(strings.TrimSpace(paramPrefix), "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.token == "" && (c.getter == nil || c.paramPrefix == "") {
		return nil, errors.New("nightscout: either a token or a paramstore getter with prefix is required")
	}
	return c, nil
}

// resolveToken caches the token only on success so a transient SSM failure
// is retried by the next request.
func (c *Client) resolveToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()
	if c.tokenLoaded {
		return c.token, nil
	}

	token, err := fetchTokenFromParamStore(ctx, c.getter, c.tokenParameterName())
	if err != nil {
		return "", err
	}
	c.token = token
	c.tokenLoaded = true
	return token, nil
}

func (c *Client) tokenParameterName() string {
	return c.paramPrefix + "/cgm-token"
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return http.DefaultClient
}

// entriesURL returns the request URL and a copy safe to log.
func (c *Client) entriesURL(token string) (string, string) {
	base := c.baseURL + entriesPath
	return base + "?token=" + url.QueryEscape(token), base
}

// LatestReading fetches the most recent entry. It makes exactly one request.
func (c *Client) LatestReading(ctx context.Context) (domain.GlucoseReading, error) {
	token, err := c.resolveToken(ctx)
	if err != nil {
		return domain.GlucoseReading{}, err
	}

	reqURL, logURL := c.entriesURL(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return domain.GlucoseReading{}, fmt.Errorf("nightscout: create request: %w", err)
	}

	raw, err := c.doJSONRequest(req, logURL)
	if err != nil {
		return domain.GlucoseReading{}, fmt.Errorf("nightscout: request failed: %w", err)
	}
	return decodeLatest(raw)
}

func decodeLatest(raw []byte) (domain.GlucoseReading, error) {
	var entries []entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return domain.GlucoseReading{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(entries) == 0 {
		return domain.GlucoseReading{}, ErrNoReadings
	}
	latest := entries[0]
	if latest.SGV == nil {
		return domain.GlucoseReading{}, fmt.Errorf("%w: sgv", ErrMissingField)
	}
	if latest.Direction == nil {
		return domain.GlucoseReading{}, fmt.Errorf("%w: direction", ErrMissingField)
	}
	return domain.GlucoseReading{Value: *latest.SGV, Trend: *latest.Direction}, nil
}

func (c *Client) doJSONRequest(req *http.Request, logURL string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		var urlErr *url.Error
		if errors.As(doErr, &urlErr) {
			// url.Error embeds the full URL, token included.
			return nil, fmt.Errorf("%s %s: %w", urlErr.Op, logURL, urlErr.Err)
		}
		return nil, doErr
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			Status:     res.Status,
			URL:        logURL,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

func fetchTokenFromParamStore(ctx context.Context, getter Getter, name string) (string, error) {
	if getter == nil {
		return "", errors.New("nightscout: paramstore getter is nil")
	}
	raw, err := getter.GetParameter(ctx, name)
	if err != nil {
		return "", fmt.Errorf("nightscout: fetch token from paramstore: %w", err)
	}
	var tp tokenPayload
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return "", fmt.Errorf("nightscout: unmarshal paramstore token value as JSON: %w", err)
	}
	if strings.TrimSpace(tp.Token) == "" {
		return "", errors.New("nightscout: API token is empty")
	}
	return strings.TrimSpace(tp.Token), nil
}
