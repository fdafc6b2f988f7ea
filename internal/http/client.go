package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
	"github.com/fivetwenty-io/logo-objects-client/pkg/logo"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// HeaderRequestID carries the per-request correlation ID.
const HeaderRequestID = "X-Request-ID"

// TokenManager supplies bearer tokens.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request is a request relative to the base URL. Path may already carry an
// encoded query string; Query is appended to it.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	RequestID  string
	Cached     bool
}

// Client sends JSON requests to the Logo Objects service.
type Client struct {
	baseURL      *url.URL
	httpClient   *retryablehttp.Client
	tokenManager TokenManager
	logger       Logger
	debug        bool
	userAgent    string
	interceptors *logo.InterceptorChain
	cache        *logo.CacheManager
	cachePolicy  *logo.CachingPolicy
	cacheScope   map[string]string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug logs every request and response.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig sets the retry budget and backoff bounds.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithHTTPTimeout bounds each attempt.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithInterceptors runs chain around every request.
func WithInterceptors(chain *logo.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithCache serves GET requests from manager when policy allows it.
func WithCache(manager *logo.CacheManager, policy *logo.CachingPolicy) Option {
	return func(c *Client) {
		if policy == nil {
			policy = logo.DefaultCachingPolicy()
		}

		c.cache = manager
		c.cachePolicy = policy
	}
}

// WithCacheScope adds scope to every cache key, so sessions for different firms
// or principals sharing one cache backend never read each other's entries.
func WithCacheScope(scope map[string]string) Option {
	return func(c *Client) {
		c.cacheScope = scope
	}
}

// NewClient creates a client for baseURL. tokenManager may be nil for
// unauthenticated requests.
func NewClient(baseURL string, tokenManager TokenManager, opts ...Option) *Client {
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		parsed = &url.URL{Path: baseURL}
	}

	retryClient := retryablehttp.NewClient()
	retryClient.Logger = nil
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:      parsed,
		httpClient:   retryClient,
		tokenManager: tokenManager,
		userAgent:    "logo-objects-client/1.0",
	}

	retryClient.RequestLogHook = client.logRetry

	for _, opt := range opts {
		opt(client)
	}

	return client
}

func (c *Client) logRetry(_ retryablehttp.Logger, req *http.Request, attempt int) {
	if attempt == 0 || c.logger == nil {
		return
	}

	c.logger.Warn("retrying request", map[string]interface{}{
		"method":     req.Method,
		"url":        req.URL.String(),
		"attempt":    attempt,
		"request_id": req.Header.Get(HeaderRequestID),
	})
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Do sends req. A status of 400 or above returns both the response and a
// *logo.APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	target := c.resolve(req.Path, req.Query)

	var body []byte

	if req.Body != nil {
		var err error

		body, err = json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
	}

	intercepted := &logo.Request{
		Method:  req.Method,
		Path:    target.RequestURI(),
		Headers: make(http.Header),
		Body:    body,
	}

	for key, value := range req.Headers {
		intercepted.Headers.Set(key, value)
	}

	err := c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
	if err != nil {
		return nil, err
	}

	cacheKey := ""
	if c.cache != nil && req.Method == http.MethodGet {
		cacheKey = c.cache.GetCacheKey(req.Method, intercepted.Path, c.cacheScope)

		entry, cacheErr := c.cache.GetEntry(ctx, cacheKey)
		if cacheErr == nil {
			resp := &Response{StatusCode: http.StatusOK, Headers: make(http.Header), Body: entry.Data, Cached: true}
			if entry.ETag != "" {
				resp.Headers.Set("ETag", entry.ETag)
			}

			return resp, c.afterResponse(ctx, intercepted, resp, nil)
		}
	}

	resp, err := c.send(ctx, target, intercepted, false)
	if err != nil {
		_ = c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, &logo.Response{Error: err})

		return nil, err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := logo.ParseResponseError(resp.StatusCode, resp.Body)

		return resp, c.afterResponse(ctx, intercepted, resp, apiErr)
	}

	c.updateCache(ctx, req.Method, intercepted.Path, cacheKey, resp)

	return resp, c.afterResponse(ctx, intercepted, resp, nil)
}

func (c *Client) afterResponse(ctx context.Context, req *logo.Request, resp *Response, apiErr *logo.APIError) error {
	intercepted := &logo.Response{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       resp.Body,
	}

	if apiErr != nil {
		intercepted.Error = apiErr
	}

	err := c.interceptors.ExecuteResponseInterceptors(ctx, req, intercepted)
	if err != nil {
		return err
	}

	if apiErr != nil {
		return apiErr
	}

	return nil
}

func (c *Client) updateCache(ctx context.Context, method, path, cacheKey string, resp *Response) {
	if c.cache == nil {
		return
	}

	if method != http.MethodGet {
		_ = c.cache.InvalidatePrefix(ctx, c.cache.GetCacheKey(http.MethodGet, resourceRoot(path), nil))

		return
	}

	if cacheKey != "" && c.cachePolicy.ShouldCache(method, path, resp.StatusCode) {
		_ = c.cache.SetWithETag(ctx, cacheKey, resp.Body, resp.Headers.Get("ETag"), 0)
	}
}

// resourceRoot trims a path to its collection, e.g. /api/v1/items/5 to
// /api/v1/items, so a write drops cached records and lists alike.
func resourceRoot(path string) string {
	path, _, _ = strings.Cut(path, "?")

	base := strings.Index(path, constants.APIBasePath+"/")
	if base < 0 {
		return path
	}

	base += len(constants.APIBasePath) + 1
	resource, _, _ := strings.Cut(path[base:], "/")

	return path[:base] + resource
}

// send performs the request, refreshing the token and replaying once on 401.
func (c *Client) send(ctx context.Context, target *url.URL, req *logo.Request, replay bool) (*Response, error) {
	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target.String(), req.Body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.New().String()

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set(HeaderRequestID, requestID)

	if len(req.Body) > 0 {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	for key, values := range req.Headers {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("getting auth token: %w", err)
		}

		if token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method":     req.Method,
			"url":        target.String(),
			"request_id": requestID,
			"body_size":  len(req.Body),
		})
	}

	start := time.Now()

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("executing %s %s: %w", req.Method, target.Path, err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"status":     httpResp.StatusCode,
			"request_id": requestID,
			"duration":   time.Since(start).String(),
			"body_size":  len(respBody),
		})
	}

	if httpResp.StatusCode == http.StatusUnauthorized && !replay && c.tokenManager != nil {
		err = c.tokenManager.RefreshToken(ctx)
		if err == nil {
			return c.send(ctx, target, req, true)
		}

		if c.logger != nil {
			c.logger.Warn("token refresh after 401 failed", map[string]interface{}{"error": err.Error()})
		}
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
		RequestID:  requestID,
	}, nil
}

// resolve joins path (which may carry an encoded query) to the base URL and
// appends query. The existing query is kept byte for byte.
func (c *Client) resolve(path string, query url.Values) *url.URL {
	target := *c.baseURL

	rawPath, rawQuery, _ := strings.Cut(path, "?")
	if !strings.HasPrefix(rawPath, "/") {
		rawPath = "/" + rawPath
	}

	target.Path = strings.TrimSuffix(c.baseURL.Path, "/") + rawPath
	target.RawPath = ""

	if extra := query.Encode(); extra != "" {
		if rawQuery != "" {
			rawQuery += "&"
		}

		rawQuery += extra
	}

	target.RawQuery = rawQuery

	return &target
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post sends a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put sends a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch sends a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}
