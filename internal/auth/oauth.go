package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrNoValidCredentials = errors.New("no valid credentials available")
	ErrTokenRequestFailed = errors.New("token request failed")
	ErrEmptyAccessToken   = errors.New("token response has no access token")
)

// OAuth2Config configures an OAuth2TokenManager.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
	// FirmNo is sent as "firmno" with the password grant.
	FirmNo       int
	RefreshToken string
	AccessToken  string
	Scopes       []string
}

// OAuth2TokenManager obtains tokens from the Logo token endpoint. It prefers a
// refresh token, then the password grant, then client credentials.
type OAuth2TokenManager struct {
	config     *OAuth2Config
	store      *TokenStore
	httpClient *http.Client
	mu         sync.Mutex
}

// NewOAuth2TokenManager creates a manager. A configured AccessToken is used until
// it is rejected.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	manager := &OAuth2TokenManager{
		config:     config,
		store:      NewTokenStore(),
		httpClient: &http.Client{Timeout: constants.ShortHTTPTimeout},
	}

	if config.AccessToken != "" {
		manager.store.Set(&Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "bearer",
		})
	}

	return manager
}

// NewLogoTokenManager creates a password grant manager for the service at baseURL.
func NewLogoTokenManager(baseURL, clientID, clientSecret, username, password string, firmNo int) *OAuth2TokenManager {
	return NewOAuth2TokenManager(&OAuth2Config{
		TokenURL:     strings.TrimSuffix(baseURL, "/") + constants.TokenPath,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Username:     username,
		Password:     password,
		FirmNo:       firmNo,
	})
}

// GetToken returns a valid access token, fetching one when needed.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another caller may have refreshed while we waited.
	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	token, err := m.fetch(ctx)
	if err != nil {
		return "", err
	}

	return token.AccessToken, nil
}

// RefreshToken fetches a new token even if the current one is still valid.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := m.fetch(ctx)

	return err
}

// SetToken installs a token obtained elsewhere.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	refresh := ""
	if current := m.store.Get(); current != nil {
		refresh = current.RefreshToken
	}

	m.store.Set(&Token{
		AccessToken:  token,
		RefreshToken: refresh,
		TokenType:    "bearer",
		ExpiresAt:    expiresAt,
	})
}

// CurrentToken returns the stored token, nil before the first fetch.
func (m *OAuth2TokenManager) CurrentToken() *Token {
	return m.store.Get()
}

func (m *OAuth2TokenManager) fetch(ctx context.Context) (*Token, error) {
	refresh := m.config.RefreshToken
	if current := m.store.Get(); current != nil && current.RefreshToken != "" {
		refresh = current.RefreshToken
	}

	var form url.Values

	switch {
	case refresh != "":
		form = url.Values{"grant_type": {"refresh_token"}, "refresh_token": {refresh}}
	case m.config.Username != "" && m.config.Password != "":
		form = url.Values{
			"grant_type": {"password"},
			"username":   {m.config.Username},
			"password":   {m.config.Password},
		}
		if m.config.FirmNo > 0 {
			form.Set("firmno", strconv.Itoa(m.config.FirmNo))
		}
	case m.config.ClientID != "" && m.config.ClientSecret != "":
		form = url.Values{"grant_type": {"client_credentials"}}
	default:
		return nil, ErrNoValidCredentials
	}

	if len(m.config.Scopes) > 0 {
		form.Set("scope", strings.Join(m.config.Scopes, " "))
	}

	token, err := m.request(ctx, form)
	if err != nil && form.Get("grant_type") == "refresh_token" && m.config.Username != "" {
		// A rejected refresh token falls back to the password grant.
		m.config.RefreshToken = ""
		m.store.Clear()

		return m.fetch(ctx)
	}

	if err != nil {
		return nil, err
	}

	m.store.Set(token)

	return token, nil
}

func (m *OAuth2TokenManager) request(ctx context.Context, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	if m.config.ClientID != "" {
		req.SetBasicAuth(m.config.ClientID, m.config.ClientSecret)
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var oauthErr struct {
			Error            string `json:"error"`
			ErrorDescription string `json:"error_description"`
		}

		_ = json.Unmarshal(body, &oauthErr)

		return nil, fmt.Errorf("%w: status %d: %s: %s", ErrTokenRequestFailed, resp.StatusCode, oauthErr.Error, oauthErr.ErrorDescription)
	}

	token := &Token{}

	err = json.Unmarshal(body, token)
	if err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}

	if token.AccessToken == "" {
		return nil, ErrEmptyAccessToken
	}

	if token.TokenType == "" {
		token.TokenType = "bearer"
	}

	if token.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	return token, nil
}
