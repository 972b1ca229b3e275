package main

import (
	"context"
	"fmt"
	"time"

	"github.com/storefront-qa/api-contract-tests/apiclient"
	"github.com/storefront-qa/api-contract-tests/config"
	"github.com/storefront-qa/api-contract-tests/credentials"
	"github.com/storefront-qa/api-contract-tests/framework"
	"github.com/storefront-qa/api-contract-tests/harness"
	"github.com/storefront-qa/api-contract-tests/logging"
	"github.com/storefront-qa/api-contract-tests/manifest"
	"github.com/storefront-qa/api-contract-tests/report"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	params := &commandParams{}
	cmd := &cobra.Command{
		Use:   "run <manifest>",
		Short: "Run the test cases of a manifest",
		Long: `Run the test cases of a manifest (.yaml, .yml, .json or .toml) in order.

Exit codes:
  0 - All test cases passed
  1 - One or more test cases failed, or the run could not start

Examples:
  api-contract-tests run manifests/storefront-smoke.yaml
  api-contract-tests run smoke.yaml --base-url http://localhost:5000 --stop-on-critical
  api-contract-tests run smoke.yaml --run "^product" --report-path out/report.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := params.validate(); err != nil {
				return err
			}
			return runManifest(cmd.Context(), cmd, params, args[0])
		},
	}
	params.addCommonFlags(cmd.Flags())
	params.addRunFlags(cmd.Flags())
	return cmd
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Check a manifest without sending any requests",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, cases, err := loadCases(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d test case(s)", report.PassGlyph, args[0], len(cases))
			if m.Name != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " in %q", m.Name)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <manifest>",
		Short: "List the test cases of a manifest in run order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := loadCases(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, c := range m.Cases {
				fmt.Fprintf(out, "%3d. %s%s\n", i+1, c.Name, describeCase(c))
			}
			return nil
		},
	}
}

func describeCase(c manifest.CaseSpec) string {
	s := ""
	if c.Critical {
		s += " [critical]"
	}
	switch {
	case c.Login != nil:
		s += fmt.Sprintf(" (login: %s)", c.Login.Role)
	case c.Token != "":
		s += " (explicit token)"
	case c.Auth != "":
		s += fmt.Sprintf(" (auth: %s)", c.Auth)
	}
	return s
}

// loadCases parses the manifest and builds its test cases against an environment that has no
// client, so that every problem short of running the cases is reported.
func loadCases(path string) (*manifest.Manifest, []framework.TestCase, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, nil, err
	}
	cases, err := m.Build(&harness.Environment{RunID: uuid.NewString()})
	if err != nil {
		return nil, nil, err
	}
	return m, cases, nil
}

func runManifest(ctx context.Context, cmd *cobra.Command, params *commandParams, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()
	progress := out
	if params.format == formatJSON {
		progress = cmd.ErrOrStderr()
	}

	cfg, err := params.loadConfig(cmd.Flags())
	if err != nil {
		return err
	}
	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	logLevel := cfg.LogLevel
	if params.debugAll {
		logLevel = "debug"
	}
	logger := logging.New(logging.Options{Level: logLevel, Output: cmd.ErrOrStderr(), Prefix: "runner"})
	mainDebugLogger := framework.NullLogger()
	if logging.IsDebug(logLevel) {
		mainDebugLogger = logging.Printf{Logger: logger}
	}

	runID := uuid.NewString()
	baseURL := cfg.APIBaseURL(m.BaseURL)
	client := apiclient.New(apiclient.Config{
		BaseURL: baseURL,
		Timeout: requestTimeout(cfg, m),
		Headers: m.Headers,
		Logger:  mainDebugLogger,
	})
	logger.Info("starting run", "runId", runID, "manifest", path, "baseUrl", baseURL)

	if cfg.HealthPath != "" {
		if err := client.AwaitService(ctx, cfg.HealthPath, cfg.AwaitTimeout, progress); err != nil {
			return fmt.Errorf("API is not available: %w", err)
		}
		fmt.Fprintln(progress)
	}

	env := &harness.Environment{
		Client:      client,
		Credentials: credentials.NewStore(cfg.LoginPath),
		Variables:   harness.NewVariables(nil),
		Logins:      cfg.Logins(),
		RunID:       runID,
		Context:     ctx,
	}
	cases, err := m.Build(env)
	if err != nil {
		return err
	}

	framework.PrintFilterDescription(progress, params.filters)

	if cfg.NoColor {
		color.NoColor = true
	}
	palette := report.PaletteFor(!cfg.NoColor)
	testLogger := &report.ConsoleTestLogger{
		Out:                  progress,
		Palette:              palette,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	fmt.Fprintf(progress, "Running %d test case(s) against %s\n", len(cases), client.BaseURL())
	results, err := env.RunSuite(cases, framework.RunConfig{
		Filter:                params.filters.AsFilter,
		TestLogger:            testLogger,
		StopOnCriticalFailure: params.stopOnCritical,
	})
	if err != nil {
		return err
	}
	logger.Debug("run finished", "runId", runID, "elapsed", results.Elapsed().Round(time.Millisecond),
		"roles", env.Credentials.Roles(), "variables", env.Variables.Names())

	info := report.RunInfo{RunID: runID, Name: m.Name, BaseURL: baseURL}
	var renderer report.Renderer = report.JSONRenderer{}
	if params.format == formatText {
		fmt.Fprintln(out)
		renderer = report.TextRenderer{Palette: palette}
	}
	if err := renderer.Render(out, info, results); err != nil {
		return err
	}

	if params.reportPath != "" {
		if err := report.WriteFile(params.reportPath, info, results); err != nil {
			return fmt.Errorf("cannot write report: %w", err)
		}
		fmt.Fprintf(progress, "\nReport written to %s\n", params.reportPath)
	}

	if !results.OK() {
		return errTestsFailed
	}
	return nil
}

// requestTimeout prefers REQUEST_TIMEOUT or --timeout, then the manifest's timeoutMs. Zero
// means the client default.
func requestTimeout(cfg config.Config, m *manifest.Manifest) time.Duration {
	if cfg.RequestTimeout > 0 {
		return cfg.RequestTimeout
	}
	if m.TimeoutMS.IsDefined() {
		return time.Duration(m.TimeoutMS.IntValue()) * time.Millisecond
	}
	return 0
}
