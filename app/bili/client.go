package bili

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

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.bilibili.com"

	dynamicAllPath    = "/x/polymer/web-dynamic/v1/feed/all"
	dynamicUpdatePath = "/x/polymer/web-dynamic/v1/feed/all/update"
	userVideosPath    = "/x/space/arc/search"

	// Feature flags the web client sends with dynamic feed requests; without
	// them the upstream omits the opus payload shape.
	dynamicFeatures = "itemOpusStyle,listOnlyfans,opusBigCover,onlyfansVote,decorationCard,onlyfansAssetsV2,forwardListHidden,ugcDelete"
)

// Client issues rate-limited requests to the upstream feed endpoints.
// All methods are synchronous and return structured errors instead of
// partial data.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	userAgent  string
	cookies    []*http.Cookie
	fetchLimit int
}

type ClientOptions struct {
	// BaseURL overrides the upstream host, used by tests
	BaseURL      string
	UserAgent    string
	CookieString string
	// MinRequestInterval is the leading spacing between any two requests
	MinRequestInterval time.Duration
	// FetchLimit bounds the number of items returned per global fetch
	FetchLimit int
	Timeout    time.Duration
}

func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout == 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.FetchLimit <= 0 {
		opts.FetchLimit = 50
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.MinRequestInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.MinRequestInterval), 1)
	}

	cookies := ParseCookieString(opts.CookieString)
	if len(cookies) > 0 {
		slog.Info("Loaded upstream cookies from configuration", "count", len(cookies))
	}

	return &Client{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    limiter,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		cookies:    cookies,
		fetchLimit: opts.FetchLimit,
	}
}

// ParseCookieString splits a browser cookie string ("a=1; b=2") into cookies,
// dropping empty values.
func ParseCookieString(s string) []*http.Cookie {
	var cookies []*http.Cookie
	for _, pair := range strings.Split(s, ";") {
		pair = strings.TrimSpace(pair)
		name, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: name, Value: value})
	}
	return cookies
}

// ProbeUpdate asks the upstream how many new items exist across all creators
// since the given baseline. Baseline "0" or "" means "from the beginning".
func (c *Client) ProbeUpdate(ctx context.Context, baseline string) (*UpdateProbe, error) {
	if baseline == "" {
		baseline = "0"
	}

	params := url.Values{}
	params.Set("update_baseline", baseline)
	params.Set("web_location", "333.1365")

	data, err := c.get(ctx, dynamicUpdatePath, params)
	if err != nil {
		return nil, err
	}

	var probe UpdateProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode update probe: %w", err)
	}

	return &probe, nil
}

// FetchAllDynamics retrieves the most recent page of the global dynamic feed,
// bounded by the configured fetch limit.
func (c *Client) FetchAllDynamics(ctx context.Context) (*DynamicPage, error) {
	params := url.Values{}
	params.Set("offset", "")
	params.Set("platform", "web")
	params.Set("features", dynamicFeatures)

	data, err := c.get(ctx, dynamicAllPath, params)
	if err != nil {
		return nil, err
	}

	var page DynamicPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to decode dynamic feed: %w", err)
	}

	if len(page.Items) > c.fetchLimit {
		page.Items = page.Items[:c.fetchLimit]
	}

	return &page, nil
}

// FetchUserDynamics retrieves the most recent dynamics of a single creator.
func (c *Client) FetchUserDynamics(ctx context.Context, uid string) ([]Dynamic, error) {
	params := url.Values{}
	params.Set("host_mid", uid)
	params.Set("offset", "")
	params.Set("platform", "web")
	params.Set("features", dynamicFeatures)

	data, err := c.get(ctx, dynamicAllPath, params)
	if err != nil {
		return nil, err
	}

	var page DynamicPage
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to decode user dynamics: %w", err)
	}

	return page.Items, nil
}

// FetchLatestVideo retrieves the creator's newest upload, or nil when the
// creator has no videos.
func (c *Client) FetchLatestVideo(ctx context.Context, uid string) (*Video, error) {
	params := url.Values{}
	params.Set("mid", uid)
	params.Set("pn", "1")
	params.Set("ps", "1")
	params.Set("order", "pubdate")

	data, err := c.get(ctx, userVideosPath, params)
	if err != nil {
		return nil, err
	}

	var result struct {
		List struct {
			VList []Video `json:"vlist"`
		} `json:"list"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode video listing: %w", err)
	}

	if len(result.List.VList) == 0 {
		return nil, nil
	}

	return &result.List.VList[0], nil
}

// envelope is the common upstream response wrapper.
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait interrupted: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", "https://www.bilibili.com/")
	req.Header.Set("Origin", "https://www.bilibili.com")
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	slog.Debug("Upstream request", "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}

	if env.Code != 0 {
		return nil, &UpstreamError{Code: env.Code, Message: env.Message}
	}

	return env.Data, nil
}
