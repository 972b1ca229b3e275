// Package config reads the runner's settings from the environment, an optional .env file, and
// command-line flags.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/storefront-qa/api-contract-tests/credentials"
	"github.com/storefront-qa/api-contract-tests/servicedef"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Configuration keys. Each is read from the environment variable of the same name in upper
// case.
const (
	KeyBaseURL        = "base_url"
	KeyAPIPrefix      = "api_prefix"
	KeyAdminEmail     = "admin_email"
	KeyAdminPhone     = "admin_phone"
	KeyAdminPassword  = "admin_password"
	KeyUserEmail      = "user_email"
	KeyUserPhone      = "user_phone"
	KeyUserPassword   = "user_password"
	KeyRequestTimeout = "request_timeout"
	KeyLoginPath      = "login_path"
	KeyHealthPath     = "health_path"
	KeyAwaitTimeout   = "await_timeout"
	KeyLogLevel       = "log_level"
	KeyNoColor        = "no_color"
)

const (
	DefaultBaseURL      = "http://localhost:5000"
	DefaultAPIPrefix    = "/api"
	DefaultAwaitTimeout = time.Second * 10
	DefaultEnvFile      = ".env"
)

// Config is the effective configuration of a run.
type Config struct {
	// BaseURL is the server root, without the API prefix. It is empty if neither the
	// environment nor a flag set it, so that a manifest can supply one.
	BaseURL   string
	APIPrefix string
	Admin     servicedef.LoginParams
	User      servicedef.LoginParams
	// RequestTimeout is zero if it was not set, so that a manifest can supply one.
	RequestTimeout time.Duration
	LoginPath      string
	HealthPath     string
	AwaitTimeout   time.Duration
	LogLevel       string
	NoColor        bool
}

// LoadOptions controls Load.
type LoadOptions struct {
	// EnvFile is a dotenv file to read before the environment. If it is empty, DefaultEnvFile
	// is read if it exists.
	EnvFile string
	// Flags are bound to the configuration keys named in FlagKeys. A flag only takes effect if
	// it was set on the command line, in which case it wins over the environment.
	Flags    *pflag.FlagSet
	FlagKeys map[string]string
}

// Load returns the effective configuration: defaults < .env file < environment < flags.
// Variables that are already in the environment are not replaced by the .env file.
func Load(opts LoadOptions) (Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(KeyAPIPrefix, DefaultAPIPrefix)
	v.SetDefault(KeyLoginPath, servicedef.DefaultLoginPath)
	v.SetDefault(KeyAwaitTimeout, DefaultAwaitTimeout.String())
	v.SetDefault(KeyLogLevel, "info")
	for flagName, key := range opts.FlagKeys {
		if opts.Flags == nil {
			break
		}
		f := opts.Flags.Lookup(flagName)
		if f == nil {
			return Config{}, fmt.Errorf("unknown flag %q for configuration key %q", flagName, key)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return Config{}, fmt.Errorf("bind flag %q: %w", flagName, err)
		}
	}

	c := Config{
		BaseURL:   strings.TrimSuffix(v.GetString(KeyBaseURL), "/"),
		APIPrefix: v.GetString(KeyAPIPrefix),
		Admin: servicedef.LoginParams{
			Email:    v.GetString(KeyAdminEmail),
			Phone:    v.GetString(KeyAdminPhone),
			Password: v.GetString(KeyAdminPassword),
		},
		User: servicedef.LoginParams{
			Email:    v.GetString(KeyUserEmail),
			Phone:    v.GetString(KeyUserPhone),
			Password: v.GetString(KeyUserPassword),
		},
		LoginPath:  v.GetString(KeyLoginPath),
		HealthPath: v.GetString(KeyHealthPath),
		LogLevel:   v.GetString(KeyLogLevel),
		NoColor:    v.GetString(KeyNoColor) != "" && !isFalse(v.GetString(KeyNoColor)),
	}
	var err error
	if c.RequestTimeout, err = durationValue(v, KeyRequestTimeout); err != nil {
		return Config{}, err
	}
	if c.AwaitTimeout, err = durationValue(v, KeyAwaitTimeout); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values that would otherwise fail later in a confusing way.
func (c Config) Validate() error {
	if c.BaseURL != "" {
		if err := validateBaseURL(c.BaseURL); err != nil {
			return fmt.Errorf("%s: %w", strings.ToUpper(KeyBaseURL), err)
		}
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("%s must not be negative", strings.ToUpper(KeyRequestTimeout))
	}
	if c.AwaitTimeout < 0 {
		return fmt.Errorf("%s must not be negative", strings.ToUpper(KeyAwaitTimeout))
	}
	return nil
}

// APIBaseURL returns the base URL for API requests: the server root, which is the configured
// one or else fallback or else DefaultBaseURL, followed by the API prefix unless the root
// already ends with it.
func (c Config) APIBaseURL(fallback string) string {
	root := c.BaseURL
	if root == "" {
		root = strings.TrimSuffix(fallback, "/")
	}
	if root == "" {
		root = DefaultBaseURL
	}
	prefix := strings.TrimSuffix(c.APIPrefix, "/")
	if prefix != "" && !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if prefix == "" || strings.HasSuffix(root, prefix) {
		return root
	}
	return root + prefix
}

// Logins returns the configured account for each role that has one.
func (c Config) Logins() map[credentials.Role]servicedef.LoginParams {
	ret := make(map[credentials.Role]servicedef.LoginParams)
	if c.Admin.IsDefined() {
		ret[credentials.RoleAdmin] = c.Admin
	}
	if c.User.IsDefined() {
		ret[credentials.RoleUser] = c.User
	}
	return ret
}

func loadEnvFile(path string) error {
	required := path != ""
	if !required {
		path = DefaultEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return nil
		}
		return fmt.Errorf("env file %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("env file %s: %w", path, err)
	}
	return nil
}

// durationValue accepts a Go duration ("1500ms", "15s") or a whole number of milliseconds.
func durationValue(v *viper.Viper, key string) (time.Duration, error) {
	s := strings.TrimSpace(v.GetString(key))
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return 0, fmt.Errorf("%s: invalid duration %q", strings.ToUpper(key), s)
}

func validateBaseURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q is not an http or https URL", s)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", s)
	}
	return nil
}

func isFalse(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "false", "no", "off":
		return true
	}
	return false
}
