package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// errTestsFailed is returned when the run completed but not every test passed. The results
// have already been printed, so no further message is shown.
var errTestsFailed = errors.New("one or more tests failed")

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errTestsFailed) {
			fmt.Fprintf(stderr, "Error: %s\n", err)
		}
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api-contract-tests",
		Short: "Run ordered API test cases against a storefront backend",
		Long: `Run the test cases of a manifest, in order, against a live API.

Cases share a credential store: a login case stores a bearer token that
later cases use. The run exits with status 0 only if every case passed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newRunCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newListCommand())
	return cmd
}
