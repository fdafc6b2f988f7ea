package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/logo-objects-client/internal/auth"
	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
	"github.com/fivetwenty-io/logo-objects-client/internal/http"
	"github.com/fivetwenty-io/logo-objects-client/pkg/logo"
)

// Static errors for err113 compliance.
var (
	ErrNoTokenManagerConfigured = errors.New("no token manager configured")
	ErrStaticTokenCannotRefresh = errors.New("static token cannot be refreshed")
)

// Client implements the logo.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	baseURL      string
	logger       logo.Logger

	items         logo.ItemsClient
	variants      logo.VariantsClient
	opportunities logo.OpportunitiesClient
	arps          logo.ArpsClient
	salesOrders   logo.SalesOrdersClient
}

// New creates a new Logo Objects client.
func New(ctx context.Context, config *logo.Config) (*Client, error) {
	if config == nil {
		return nil, logo.ErrConfigRequired
	}

	return NewWithTokenManager(config, createTokenManager(config))
}

// NewWithTokenManager creates a client that authenticates through tokenManager.
// A nil tokenManager sends requests without authentication.
func NewWithTokenManager(config *logo.Config, tokenManager auth.TokenManager) (*Client, error) {
	if config == nil {
		return nil, logo.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, logo.ErrBaseURLRequired
	}

	httpOpts, err := createHTTPClientOptions(config)
	if err != nil {
		return nil, err
	}

	var transportTokens http.TokenManager
	if tokenManager != nil {
		transportTokens = tokenManager
	}

	httpClient := http.NewClient(config.BaseURL, transportTokens, httpOpts...)

	client := &Client{
		httpClient:   httpClient,
		tokenManager: tokenManager,
		baseURL:      config.BaseURL,
		logger:       config.Logger,
	}

	client.initializeResourceClients()

	return client, nil
}

// createTokenManager creates appropriate token manager based on config.
func createTokenManager(config *logo.Config) auth.TokenManager {
	hasUser := config.Username != "" && config.Password != ""

	if config.AccessToken != "" && hasUser {
		return &fallbackTokenManager{
			staticToken:  config.AccessToken,
			oauthManager: auth.NewOAuth2TokenManager(oauthConfig(config)),
		}
	}

	if config.AccessToken != "" {
		return &staticTokenManager{token: config.AccessToken}
	}

	if hasUser || config.RefreshToken != "" || (config.ClientID != "" && config.ClientSecret != "") {
		return auth.NewOAuth2TokenManager(oauthConfig(config))
	}

	return nil
}

func oauthConfig(config *logo.Config) *auth.OAuth2Config {
	clientID := config.ClientID
	if clientID == "" && config.ClientSecret == "" {
		clientID = constants.DefaultClientID
	}

	return &auth.OAuth2Config{
		TokenURL:     getTokenURL(config),
		ClientID:     clientID,
		ClientSecret: config.ClientSecret,
		Username:     config.Username,
		Password:     config.Password,
		FirmNo:       config.FirmNo,
		RefreshToken: config.RefreshToken,
	}
}

// getTokenURL returns token URL from config or derives it from the base URL.
func getTokenURL(config *logo.Config) string {
	if config.TokenURL != "" {
		return config.TokenURL
	}

	return strings.TrimSuffix(config.BaseURL, "/") + constants.TokenPath
}

// createHTTPClientOptions builds HTTP client options from config.
func createHTTPClientOptions(config *logo.Config) ([]http.Option, error) {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.HTTPTimeout > 0 {
		httpOpts = append(httpOpts, http.WithHTTPTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.ExtendedRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	if config.Cache != nil {
		manager, policy, err := logo.NewCacheManagerFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("configuring cache: %w", err)
		}

		if manager != nil {
			httpOpts = append(httpOpts, http.WithCache(manager, policy), http.WithCacheScope(cacheScope(config)))
		}
	}

	return httpOpts, nil
}

// cacheScope identifies the firm and principal whose data a session sees.
func cacheScope(config *logo.Config) map[string]string {
	principal := config.Username
	if principal == "" {
		principal = config.ClientID
	}

	return map[string]string{
		"firm":      strconv.Itoa(config.FirmNo),
		"principal": principal,
	}
}

// GetTokenManager returns the token manager for this client.
func (c *Client) GetTokenManager() auth.TokenManager {
	return c.tokenManager
}

// BaseURL returns the service URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Items implements logo.Client.Items.
func (c *Client) Items() logo.ItemsClient {
	return c.items
}

// Variants implements logo.Client.Variants.
func (c *Client) Variants() logo.VariantsClient {
	return c.variants
}

// Opportunities implements logo.Client.Opportunities.
func (c *Client) Opportunities() logo.OpportunitiesClient {
	return c.opportunities
}

// Arps implements logo.Client.Arps.
func (c *Client) Arps() logo.ArpsClient {
	return c.arps
}

// SalesOrders implements logo.Client.SalesOrders.
func (c *Client) SalesOrders() logo.SalesOrdersClient {
	return c.salesOrders
}

// GetToken returns the current access token from the token manager.
func (c *Client) GetToken(ctx context.Context) (string, error) {
	if c.tokenManager == nil {
		return "", ErrNoTokenManagerConfigured
	}

	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get token: %w", err)
	}

	return token, nil
}

func (c *Client) initializeResourceClients() {
	c.items = NewItemsClient(c.httpClient)
	c.variants = NewVariantsClient(c.httpClient)
	c.opportunities = NewOpportunitiesClient(c.httpClient)
	c.arps = NewArpsClient(c.httpClient)
	c.salesOrders = NewSalesOrdersClient(c.httpClient)
}

// staticTokenManager provides a static token.
type staticTokenManager struct {
	mu    sync.RWMutex
	token string
}

func (m *staticTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.token, nil
}

func (m *staticTokenManager) RefreshToken(ctx context.Context) error {
	return ErrStaticTokenCannotRefresh
}

func (m *staticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
}

// loggerAdapter adapts logo.Logger to http.Logger.
type loggerAdapter struct {
	logger logo.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}

// fallbackTokenManager uses the static token until the service rejects it, then
// switches to the password grant for good.
type fallbackTokenManager struct {
	mu           sync.Mutex
	staticToken  string
	oauthManager auth.TokenManager
	usingOAuth   bool
}

func (m *fallbackTokenManager) GetToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	usingOAuth := m.usingOAuth
	staticToken := m.staticToken
	m.mu.Unlock()

	if !usingOAuth && staticToken != "" {
		return staticToken, nil
	}

	token, err := m.oauthManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get OAuth token: %w", err)
	}

	return token, nil
}

func (m *fallbackTokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	switching := !m.usingOAuth
	m.usingOAuth = true
	m.mu.Unlock()

	if switching {
		_, err := m.oauthManager.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to get OAuth token during refresh: %w", err)
		}

		return nil
	}

	err := m.oauthManager.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("failed to refresh OAuth token: %w", err)
	}

	return nil
}

func (m *fallbackTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.usingOAuth {
		m.oauthManager.SetToken(token, expiresAt)
	} else {
		m.staticToken = token
	}
}
