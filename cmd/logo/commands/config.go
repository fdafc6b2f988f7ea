package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fivetwenty-io/logo-objects-client/internal/auth"
	"github.com/fivetwenty-io/logo-objects-client/internal/client"
	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
	"github.com/fivetwenty-io/logo-objects-client/pkg/logo"
	"github.com/fivetwenty-io/logo-objects-client/pkg/logoclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration keys, shared by viper, the config file and LOGO_* variables.
const (
	keyURL            = "url"
	keyUsername       = "username"
	keyFirmNo         = "firm_no"
	keyClientID       = "client_id"
	keyClientSecret   = "client_secret"
	keyToken          = "token"
	keyTokenExpiresAt = "token_expires_at"
	keyRefreshToken   = "refresh_token"
	keyOutput         = "output"
	keyCache          = "cache"
	keyNATSURL        = "nats_url"
)

// Config represents the CLI configuration.
type Config struct {
	URL            string     `json:"url,omitempty"              yaml:"url,omitempty"`
	Username       string     `json:"username,omitempty"         yaml:"username,omitempty"`
	FirmNo         int        `json:"firm_no,omitempty"          yaml:"firm_no,omitempty"`
	ClientID       string     `json:"client_id,omitempty"        yaml:"client_id,omitempty"`
	ClientSecret   string     `json:"client_secret,omitempty"    yaml:"client_secret,omitempty"`
	Token          string     `json:"token,omitempty"            yaml:"token,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty" yaml:"token_expires_at,omitempty"`
	RefreshToken   string     `json:"refresh_token,omitempty"    yaml:"refresh_token,omitempty"`
	Output         string     `json:"output,omitempty"           yaml:"output,omitempty"`
	Cache          string     `json:"cache,omitempty"            yaml:"cache,omitempty"`
	NATSURL        string     `json:"nats_url,omitempty"         yaml:"nats_url,omitempty"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the settings stored in the Logo CLI configuration file",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the current CLI configuration with secrets masked",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat()
			if err != nil {
				return err
			}

			config := maskSecrets(loadConfig())

			if format != constants.FormatTable {
				return writeStructured(cmd.OutOrStdout(), format, config)
			}

			rows := [][]string{
				{columnLabel(keyURL), valueOrNA(config.URL)},
				{columnLabel(keyUsername), valueOrNA(config.Username)},
				{columnLabel(keyFirmNo), strconv.Itoa(config.FirmNo)},
				{columnLabel(keyClientID), valueOrNA(config.ClientID)},
				{columnLabel(keyClientSecret), valueOrNA(config.ClientSecret)},
				{columnLabel(keyToken), valueOrNA(config.Token)},
				{columnLabel(keyTokenExpiresAt), formatTime(config.TokenExpiresAt)},
				{columnLabel(keyOutput), valueOrNA(config.Output)},
				{columnLabel(keyCache), valueOrNA(config.Cache)},
				{columnLabel(keyNATSURL), valueOrNA(config.NATSURL)},
			}

			return renderTable(cmd.OutOrStdout(), []string{"property", "value"}, rows)
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long: `Set a configuration value. Keys: url, username, firm_no, client_id,
client_secret, output, cache (none, memory, nats), nats_url.`,
		Args: cobra.ExactArgs(constants.MinimumArgumentCount),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], args[1])
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", args[0])

			return nil
		},
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset KEY",
		Short: "Unset a configuration value",
		Long:  "Remove a configuration value from the configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			err := setConfigValue(config, args[0], "")
			if err != nil {
				return err
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Unset %s\n", args[0])

			return nil
		},
	}
}

func setConfigValue(config *Config, key, value string) error {
	switch key {
	case keyURL:
		config.URL = value
	case keyUsername:
		config.Username = value
	case keyFirmNo:
		if value == "" {
			config.FirmNo = 0

			return nil
		}

		firmNo, err := strconv.Atoi(value)
		if err != nil || firmNo < 0 {
			return fmt.Errorf("%w: firm_no %q", constants.ErrInvalidReference, value)
		}

		config.FirmNo = firmNo
	case keyClientID:
		config.ClientID = value
	case keyClientSecret:
		config.ClientSecret = value
	case keyOutput:
		if value != "" && !validOutputFormat(value) {
			return fmt.Errorf("%w: %s", constants.ErrInvalidOutputFormat, value)
		}

		config.Output = value
	case keyCache:
		_, err := logo.ParseCacheType(value)
		if err != nil {
			return fmt.Errorf("invalid cache setting: %w", err)
		}

		config.Cache = value
	case keyNATSURL:
		config.NATSURL = value
	case keyToken, keyTokenExpiresAt, keyRefreshToken:
		return fmt.Errorf("%w: %s (use 'logo login' or 'logo logout')", constants.ErrTokenFieldsReadOnly, key)
	default:
		return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
	}

	return nil
}

// loadConfig reads the effective configuration: flags, then LOGO_* variables,
// then the configuration file.
func loadConfig() *Config {
	config := &Config{
		URL:          viper.GetString(keyURL),
		Username:     viper.GetString(keyUsername),
		FirmNo:       viper.GetInt(keyFirmNo),
		ClientID:     viper.GetString(keyClientID),
		ClientSecret: viper.GetString(keyClientSecret),
		Token:        viper.GetString(keyToken),
		RefreshToken: viper.GetString(keyRefreshToken),
		Output:       viper.GetString(keyOutput),
		Cache:        viper.GetString(keyCache),
		NATSURL:      viper.GetString(keyNATSURL),
	}

	expiresAt := viper.GetTime(keyTokenExpiresAt)
	if !expiresAt.IsZero() {
		config.TokenExpiresAt = &expiresAt
	}

	return config
}

func configFilePath() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		return configFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ".logo", "config.yml"), nil
}

func saveConfigStruct(config *Config) error {
	configFile, err := configFilePath()
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFile, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	viper.SetConfigFile(configFile)

	err = viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("failed to reload config file: %w", err)
	}

	return nil
}

func maskSecrets(config *Config) *Config {
	masked := *config

	if masked.ClientSecret != "" {
		masked.ClientSecret = constants.MaskedSecret
	}

	if masked.Token != "" {
		masked.Token = constants.MaskedSecret
	}

	if masked.RefreshToken != "" {
		masked.RefreshToken = constants.MaskedSecret
	}

	return &masked
}

// cacheConfig maps the cache settings onto a logo.CacheConfig, nil when caching
// is off.
func cacheConfig(config *Config) (*logo.CacheConfig, error) {
	cacheType, err := logo.ParseCacheType(config.Cache)
	if err != nil {
		return nil, err
	}

	switch cacheType {
	case logo.CacheTypeMemory:
		return &logo.CacheConfig{Type: logo.CacheTypeMemory}, nil
	case logo.CacheTypeNATS:
		return &logo.CacheConfig{
			Type: logo.CacheTypeNATS,
			NATS: &logo.NATSKVConfig{URL: config.NATSURL},
		}, nil
	default:
		return nil, nil
	}
}

// createClient builds a client from the effective configuration. Stored tokens
// are renewed through the refresh grant and written back to the config file.
func createClient(ctx context.Context, cmd *cobra.Command) (logo.Client, error) {
	config := loadConfig()
	if config.URL == "" {
		return nil, constants.ErrNoURLConfigured
	}

	cache, err := cacheConfig(config)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd.ErrOrStderr(), viper.GetBool("verbose"))

	logoConfig := &logo.Config{
		BaseURL:      logoclient.NormalizeBaseURL(config.URL),
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		Username:     config.Username,
		FirmNo:       config.FirmNo,
		Debug:        viper.GetBool("verbose"),
		Logger:       logger,
		UserAgent:    "logo-cli",
		Cache:        cache,
	}

	if config.Token == "" && config.RefreshToken == "" {
		if config.ClientID == "" || config.ClientSecret == "" {
			return nil, constants.ErrNotAuthenticated
		}

		c, err := logoclient.New(ctx, logoConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create client: %w", err)
		}

		return c, nil
	}

	var expiresAt time.Time
	if config.TokenExpiresAt != nil {
		expiresAt = *config.TokenExpiresAt
	}

	tokenManager := auth.NewConfigTokenManager(
		tokenConfig(logoConfig.BaseURL, config),
		NewConfigPersister(),
		config.Token,
		expiresAt,
	)
	tokenManager.OnPersistError(func(err error) {
		logger.Warn("Could not save refreshed token", map[string]interface{}{"error": err.Error()})
	})

	c, err := client.NewWithTokenManager(logoConfig, tokenManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create client with token manager: %w", err)
	}

	return c, nil
}

func tokenConfig(baseURL string, config *Config) *auth.OAuth2Config {
	clientID := config.ClientID
	if clientID == "" && config.ClientSecret == "" {
		clientID = constants.DefaultClientID
	}

	return &auth.OAuth2Config{
		TokenURL:     baseURL + constants.TokenPath,
		ClientID:     clientID,
		ClientSecret: config.ClientSecret,
		FirmNo:       config.FirmNo,
		RefreshToken: config.RefreshToken,
	}
}
