// Package logoclient provides the main entry point for creating Logo Objects clients
package logoclient

import (
	"context"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/logo-objects-client/internal/client"
	"github.com/fivetwenty-io/logo-objects-client/pkg/logo"
)

// New creates a new Logo Objects client.
func New(ctx context.Context, config *logo.Config) (logo.Client, error) {
	if config == nil {
		return nil, logo.ErrConfigRequired
	}

	if config.BaseURL == "" {
		return nil, logo.ErrBaseURLRequired
	}

	normalized := *config
	normalized.BaseURL = NormalizeBaseURL(config.BaseURL)

	c, err := client.New(ctx, &normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to create new client: %w", err)
	}

	return c, nil
}

// NormalizeBaseURL trims a trailing slash and adds "https://" when no scheme is
// given.
func NormalizeBaseURL(baseURL string) string {
	baseURL = strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "https://" + baseURL
	}

	return baseURL
}

// NewWithEndpoint creates a client without authentication.
func NewWithEndpoint(ctx context.Context, baseURL string) (logo.Client, error) {
	return New(ctx, &logo.Config{BaseURL: baseURL})
}

// NewWithToken creates a client that sends a fixed access token.
func NewWithToken(ctx context.Context, baseURL, token string) (logo.Client, error) {
	return New(ctx, &logo.Config{
		BaseURL:     baseURL,
		AccessToken: token,
	})
}

// NewWithPassword creates a client that signs in to firmNo with the password grant.
func NewWithPassword(ctx context.Context, baseURL, username, password string, firmNo int) (logo.Client, error) {
	return New(ctx, &logo.Config{
		BaseURL:  baseURL,
		Username: username,
		Password: password,
		FirmNo:   firmNo,
	})
}

// NewWithClientCredentials creates a client using the client_credentials grant.
func NewWithClientCredentials(ctx context.Context, baseURL, clientID, clientSecret string) (logo.Client, error) {
	return New(ctx, &logo.Config{
		BaseURL:      baseURL,
		ClientID:     clientID,
		ClientSecret: clientSecret,
	})
}
