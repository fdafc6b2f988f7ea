package commands

import (
	"sync"
	"time"
)

// ConfigPersister implements the auth.ConfigPersister interface on top of the
// CLI configuration file.
type ConfigPersister struct {
	mutex sync.Mutex
}

// NewConfigPersister creates a new config persister.
func NewConfigPersister() *ConfigPersister {
	return &ConfigPersister{}
}

// SaveToken stores a renewed token. An empty refreshToken keeps the stored one.
func (p *ConfigPersister) SaveToken(token string, expiresAt time.Time, refreshToken string) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	config := loadConfig()

	config.Token = token
	config.TokenExpiresAt = nil

	if !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	if refreshToken != "" {
		config.RefreshToken = refreshToken
	}

	return saveConfigStruct(config)
}
