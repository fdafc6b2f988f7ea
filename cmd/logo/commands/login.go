package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fivetwenty-io/logo-objects-client/internal/auth"
	"github.com/fivetwenty-io/logo-objects-client/internal/constants"
	"github.com/fivetwenty-io/logo-objects-client/pkg/logoclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		username     string
		password     string
		firmNo       int
		clientID     string
		clientSecret string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to Logo Objects",
		Long: `Sign in with the password grant and store the issued tokens.

The password is never written to the configuration file; the stored refresh
token renews the session until it expires.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())

			baseURL := viper.GetString(keyURL)
			if baseURL == "" {
				baseURL = prompt(cmd.OutOrStdout(), reader, "Service URL: ")
			}

			if baseURL == "" {
				return constants.ErrNoURLConfigured
			}

			baseURL = logoclient.NormalizeBaseURL(baseURL)

			if username == "" {
				username = viper.GetString(keyUsername)
			}

			if username == "" {
				username = prompt(cmd.OutOrStdout(), reader, "Username: ")
			}

			if username == "" {
				return constants.ErrUsernameRequired
			}

			if password == "" {
				var err error

				password, err = readPassword(cmd.OutOrStdout(), cmd.InOrStdin(), reader)
				if err != nil {
					return err
				}
			}

			if password == "" {
				return constants.ErrPasswordRequired
			}

			if !cmd.Flags().Changed("firm") {
				firmNo = viper.GetInt(keyFirmNo)
			}

			if clientID == "" {
				clientID = viper.GetString(keyClientID)
			}

			if clientSecret == "" {
				clientSecret = viper.GetString(keyClientSecret)
			}

			if clientID == "" && clientSecret == "" {
				clientID = constants.DefaultClientID
			}

			tokenManager := auth.NewOAuth2TokenManager(&auth.OAuth2Config{
				TokenURL:     baseURL + constants.TokenPath,
				ClientID:     clientID,
				ClientSecret: clientSecret,
				Username:     username,
				Password:     password,
				FirmNo:       firmNo,
			})

			_, err := tokenManager.GetToken(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to sign in: %w", err)
			}

			token := tokenManager.CurrentToken()

			config := loadConfig()
			config.URL = baseURL
			config.Username = username
			config.FirmNo = firmNo
			config.Token = token.AccessToken
			config.RefreshToken = token.RefreshToken
			config.TokenExpiresAt = nil

			if !token.ExpiresAt.IsZero() {
				expiresAt := token.ExpiresAt
				config.TokenExpiresAt = &expiresAt
			}

			if clientID != constants.DefaultClientID {
				config.ClientID = clientID
			}

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in to %s as %s (firm %d)\n", baseURL, username, firmNo)

			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "user name")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	cmd.Flags().IntVar(&firmNo, "firm", 0, "firm number to work in")
	cmd.Flags().StringVar(&clientID, "client-id", "", "OAuth client ID")
	cmd.Flags().StringVar(&clientSecret, "client-secret", "", "OAuth client secret")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove stored tokens",
		Long:  "Remove the access and refresh tokens from the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			config.Token = ""
			config.RefreshToken = ""
			config.TokenExpiresAt = nil

			err := saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")

			return nil
		},
	}
}

func prompt(out io.Writer, reader *bufio.Reader, label string) string {
	_, _ = fmt.Fprint(out, label)

	line, _ := reader.ReadString('\n')

	return strings.TrimSpace(line)
}

// readPassword reads without echo from a terminal and falls back to a plain line
// when input is redirected.
func readPassword(out io.Writer, in io.Reader, reader *bufio.Reader) (string, error) {
	_, _ = fmt.Fprint(out, "Password: ")

	file, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) { // #nosec G115 -- file descriptors fit in an int
		line, _ := reader.ReadString('\n')

		return strings.TrimSpace(line), nil
	}

	passwordBytes, err := term.ReadPassword(int(file.Fd())) // #nosec G115
	_, _ = fmt.Fprintln(out)

	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	return string(passwordBytes), nil
}
