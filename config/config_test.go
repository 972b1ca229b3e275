package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/storefront-qa/api-contract-tests/credentials"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	KeyBaseURL, KeyAPIPrefix, KeyAdminEmail, KeyAdminPhone, KeyAdminPassword, KeyUserEmail,
	KeyUserPhone, KeyUserPassword, KeyRequestTimeout, KeyLoginPath, KeyHealthPath,
	KeyAwaitTimeout, KeyLogLevel, KeyNoColor,
}

// clearEnv blanks every configuration variable for the duration of the test. Empty variables
// are treated as unset.
func clearEnv(t *testing.T) {
	for _, key := range allKeys {
		t.Setenv(strings.ToUpper(key), "")
	}
}

func loadWithoutEnvFile(t *testing.T, opts LoadOptions) Config {
	if opts.EnvFile == "" {
		opts.EnvFile = filepath.Join(t.TempDir(), "empty.env")
		require.NoError(t, os.WriteFile(opts.EnvFile, nil, 0o644))
	}
	c, err := Load(opts)
	require.NoError(t, err)
	return c
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	c := loadWithoutEnvFile(t, LoadOptions{})

	assert.Equal(t, "", c.BaseURL)
	assert.Equal(t, DefaultAPIPrefix, c.APIPrefix)
	assert.Equal(t, "/auth/login", c.LoginPath)
	assert.Equal(t, "", c.HealthPath)
	assert.Equal(t, time.Duration(0), c.RequestTimeout)
	assert.Equal(t, DefaultAwaitTimeout, c.AwaitTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.False(t, c.NoColor)
	assert.Len(t, c.Logins(), 0)
	assert.Equal(t, "http://localhost:5000/api", c.APIBaseURL(""))
}

func TestEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASE_URL", "https://shop.example.com/")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "secret")
	t.Setenv("USER_PHONE", "+15550100")
	t.Setenv("USER_PASSWORD", "pw")
	t.Setenv("REQUEST_TIMEOUT", "2500")
	t.Setenv("HEALTH_PATH", "/health")
	t.Setenv("NO_COLOR", "1")

	c := loadWithoutEnvFile(t, LoadOptions{})

	assert.Equal(t, "https://shop.example.com", c.BaseURL)
	assert.Equal(t, "https://shop.example.com/api", c.APIBaseURL("http://ignored"))
	assert.Equal(t, 2500*time.Millisecond, c.RequestTimeout)
	assert.Equal(t, "/health", c.HealthPath)
	assert.True(t, c.NoColor)

	logins := c.Logins()
	require.Len(t, logins, 2)
	assert.Equal(t, "admin@example.com", logins[credentials.RoleAdmin].Email)
	assert.Equal(t, "secret", logins[credentials.RoleAdmin].Password)
	assert.Equal(t, "+15550100", logins[credentials.RoleUser].Phone)
}

func TestNoColorFalseValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("NO_COLOR", "false")
	c := loadWithoutEnvFile(t, LoadOptions{})
	assert.False(t, c.NoColor)
}

func TestFlagsWinOverEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("BASE_URL", "http://from-env:5000")
	t.Setenv("REQUEST_TIMEOUT", "15s")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("base-url", "", "")
	fs.Duration("timeout", 0, "")
	require.NoError(t, fs.Parse([]string{"--base-url", "http://from-flag:8080"}))

	c := loadWithoutEnvFile(t, LoadOptions{
		Flags:    fs,
		FlagKeys: map[string]string{"base-url": KeyBaseURL, "timeout": KeyRequestTimeout},
	})
	assert.Equal(t, "http://from-flag:8080", c.BaseURL)
	assert.Equal(t, 15*time.Second, c.RequestTimeout)
}

func TestUnknownFlagKeyIsError(t *testing.T) {
	clearEnv(t)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	_, err := Load(LoadOptions{
		EnvFile:  writeEnvFile(t, ""),
		Flags:    fs,
		FlagKeys: map[string]string{"nope": KeyBaseURL},
	})
	assert.Error(t, err)
}

func TestEnvFileDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADMIN_EMAIL", "already@example.com")
	require.NoError(t, os.Unsetenv("ADMIN_PASSWORD"))
	t.Cleanup(func() { _ = os.Unsetenv("ADMIN_PASSWORD") })

	path := writeEnvFile(t, "ADMIN_EMAIL=file@example.com\nADMIN_PASSWORD=from-file\n")
	c, err := Load(LoadOptions{EnvFile: path})
	require.NoError(t, err)

	assert.Equal(t, "already@example.com", c.Admin.Email)
	assert.Equal(t, "from-file", c.Admin.Password)
}

func TestMissingExplicitEnvFileIsError(t *testing.T) {
	clearEnv(t)
	_, err := Load(LoadOptions{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	assert.Error(t, err)
}

func TestInvalidValues(t *testing.T) {
	for _, tc := range []struct{ key, value string }{
		{"BASE_URL", "localhost:5000"},
		{"BASE_URL", "ftp://example.com"},
		{"REQUEST_TIMEOUT", "soon"},
		{"AWAIT_TIMEOUT", "-1s"},
	} {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			_, err := Load(LoadOptions{EnvFile: writeEnvFile(t, "")})
			assert.Error(t, err)
		})
	}
}

func TestAPIBaseURL(t *testing.T) {
	c := Config{APIPrefix: "/api"}
	assert.Equal(t, "http://manifest:3000/api", c.APIBaseURL("http://manifest:3000/"))

	c.BaseURL = "http://localhost:5000/api"
	assert.Equal(t, "http://localhost:5000/api", c.APIBaseURL(""))

	c = Config{BaseURL: "http://localhost:5000", APIPrefix: "v2"}
	assert.Equal(t, "http://localhost:5000/v2", c.APIBaseURL(""))

	c.APIPrefix = ""
	assert.Equal(t, "http://localhost:5000", c.APIBaseURL(""))
}

func writeEnvFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
