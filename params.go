package main

import (
	"fmt"
	"time"

	"github.com/storefront-qa/api-contract-tests/config"
	"github.com/storefront-qa/api-contract-tests/framework"

	"github.com/spf13/pflag"
)

const (
	formatText = "text"
	formatJSON = "json"
)

type commandParams struct {
	envFile        string
	baseURL        string
	reportPath     string
	stopOnCritical bool
	timeout        time.Duration
	filters        framework.RegexFilters
	debug          bool
	debugAll       bool
	noColor        bool
	format         string
}

// configFlags maps flags to the configuration keys they override.
var configFlags = map[string]string{
	"base-url": config.KeyBaseURL,
	"timeout":  config.KeyRequestTimeout,
	"no-color": config.KeyNoColor,
}

func (c *commandParams) addCommonFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.envFile, "env-file", "", "dotenv file to read (default .env if it exists)")
	fs.StringVar(&c.baseURL, "base-url", "", "server URL, overriding BASE_URL and the manifest")
	fs.DurationVar(&c.timeout, "timeout", 0, "per-request timeout, overriding REQUEST_TIMEOUT and the manifest")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colored output")
}

func (c *commandParams) addRunFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.reportPath, "report-path", "", "write a report file (.md for Markdown, otherwise JSON)")
	fs.BoolVar(&c.stopOnCritical, "stop-on-critical", false, "skip the remaining tests after a critical test fails")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.StringVar(&c.format, "format", formatText, "console output format (text|json)")
}

func (c *commandParams) validate() error {
	if c.format != formatText && c.format != formatJSON {
		return fmt.Errorf("invalid format %q: must be %s or %s", c.format, formatText, formatJSON)
	}
	return nil
}

func (c *commandParams) loadConfig(fs *pflag.FlagSet) (config.Config, error) {
	return config.Load(config.LoadOptions{
		EnvFile:  c.envFile,
		Flags:    fs,
		FlagKeys: configFlags,
	})
}
