//go:build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	URL      string
	Username string
	Password string
	FirmNo   int
	LogoPath string
	Verbose  bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	firmNo, _ := strconv.Atoi(os.Getenv("LOGO_TEST_FIRM_NO"))

	return &TestConfig{
		URL:      os.Getenv("LOGO_TEST_URL"),
		Username: os.Getenv("LOGO_TEST_USERNAME"),
		Password: os.Getenv("LOGO_TEST_PASSWORD"),
		FirmNo:   firmNo,
		LogoPath: getLogoPath(),
		Verbose:  os.Getenv("LOGO_TEST_VERBOSE") == "true",
	}
}

// getLogoPath determines the path to the logo binary.
func getLogoPath() string {
	if path := os.Getenv("LOGO_BINARY_PATH"); path != "" {
		return path
	}

	for _, candidate := range []string{"../../logo", "./logo", "../logo"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "logo"
}

// SkipIfMissingConfig skips the test unless a service and credentials are set.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.URL == "" || config.Username == "" || config.Password == "" {
		t.Skip("LOGO_TEST_URL, LOGO_TEST_USERNAME and LOGO_TEST_PASSWORD must be set")
	}
}

// SkipIfMissingBinary skips the test when the logo binary cannot be found.
func (config *TestConfig) SkipIfMissingBinary(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(config.LogoPath); err != nil {
		t.Skipf("logo binary not found at %s, skipping integration test", config.LogoPath)
	}
}

// CommandRunner runs logo commands against a private configuration file.
type CommandRunner struct {
	config     *TestConfig
	configFile string
	t          *testing.T
}

// NewCommandRunner creates a runner whose configuration lives in t.TempDir.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	t.Helper()

	return &CommandRunner{
		config:     config,
		configFile: filepath.Join(t.TempDir(), "config.yml"),
		t:          t,
	}
}

// Run executes a logo command and returns its output.
func (runner *CommandRunner) Run(args ...string) (string, string, error) {
	return runner.RunWithInput("", args...)
}

// RunWithInput executes a logo command with stdin input.
func (runner *CommandRunner) RunWithInput(input string, args ...string) (string, string, error) {
	args = append([]string{"--config", runner.configFile}, args...)

	// #nosec G204 -- the binary path comes from the test environment
	cmd := exec.Command(runner.config.LogoPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Stdin = strings.NewReader(input)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.LogoPath, strings.Join(args, " "))
	}

	err := cmd.Run()
	stdout, stderr := stdoutBuf.String(), stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// Login signs in with the configured test user.
func (runner *CommandRunner) Login() (string, string, error) {
	return runner.Run("login",
		"--url", runner.config.URL,
		"--username", runner.config.Username,
		"--password", runner.config.Password,
		"--firm", strconv.Itoa(runner.config.FirmNo))
}

// AssertJSONOutput verifies command output looks like JSON.
func AssertJSONOutput(t *testing.T, output string) {
	t.Helper()

	output = strings.TrimSpace(output)
	if !strings.HasPrefix(output, "{") && !strings.HasPrefix(output, "[") {
		t.Errorf("Output does not appear to be JSON: %s", output)
	}
}
