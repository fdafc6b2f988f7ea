package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoConfigPersister = errors.New("no config persister configured")
)

// ConfigPersister saves tokens, typically into the CLI configuration file.
type ConfigPersister interface {
	SaveToken(token string, expiresAt time.Time, refreshToken string) error
}

// ConfigTokenManager wraps OAuth2TokenManager and persists every new token so the
// next CLI invocation can reuse it.
type ConfigTokenManager struct {
	oauth2Manager   *OAuth2TokenManager
	configPersister ConfigPersister
	mutex           sync.Mutex
	persisted       string
	onPersistError  func(error)
}

// NewConfigTokenManager creates a persisting token manager. A non-empty
// initialToken is installed with initialExpiry.
func NewConfigTokenManager(config *OAuth2Config, configPersister ConfigPersister, initialToken string, initialExpiry time.Time) *ConfigTokenManager {
	oauth2Manager := NewOAuth2TokenManager(config)

	if initialToken != "" {
		oauth2Manager.SetToken(initialToken, initialExpiry)
	}

	return &ConfigTokenManager{
		oauth2Manager:   oauth2Manager,
		configPersister: configPersister,
		persisted:       initialToken,
	}
}

// OnPersistError sets a callback for failures to save a token. Persist errors
// never fail the request.
func (m *ConfigTokenManager) OnPersistError(fn func(error)) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.onPersistError = fn
}

// GetToken returns a valid access token and persists it if it changed.
func (m *ConfigTokenManager) GetToken(ctx context.Context) (string, error) {
	token, err := m.oauth2Manager.GetToken(ctx)
	if err != nil {
		return "", err
	}

	m.persistIfChanged()

	return token, nil
}

// RefreshToken forces a token refresh and persists the result.
func (m *ConfigTokenManager) RefreshToken(ctx context.Context) error {
	err := m.oauth2Manager.RefreshToken(ctx)
	if err != nil {
		return err
	}

	m.persistIfChanged()

	return nil
}

// SetToken manually sets the access token without persisting it.
func (m *ConfigTokenManager) SetToken(token string, expiresAt time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.oauth2Manager.SetToken(token, expiresAt)
	m.persisted = token
}

// GetTokenExpiry returns the current token's expiration time.
func (m *ConfigTokenManager) GetTokenExpiry() time.Time {
	token := m.oauth2Manager.store.Get()
	if token == nil {
		return time.Time{}
	}

	return token.ExpiresAt
}

func (m *ConfigTokenManager) persistIfChanged() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	current := m.oauth2Manager.store.Get()
	if current == nil || current.AccessToken == m.persisted {
		return
	}

	err := m.persistToken(current)
	if err != nil {
		if m.onPersistError != nil {
			m.onPersistError(err)
		}

		return
	}

	m.persisted = current.AccessToken
}

func (m *ConfigTokenManager) persistToken(token *Token) error {
	if m.configPersister == nil {
		return ErrNoConfigPersister
	}

	err := m.configPersister.SaveToken(token.AccessToken, token.ExpiresAt, token.RefreshToken)
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	return nil
}
