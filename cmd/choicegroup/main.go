// Command choicegroup runs choice-group scenarios and serves configured
// groups over HTTP.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/choicegroup/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI and returns the exit code. Errors are printed here
// rather than by cobra so coded errors keep their formatting.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		errors.Fprint(stderr, err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:   "choicegroup",
		Short: "Checkbox, radio and select groups as a state engine",
		Long: `choicegroup keeps the value of checkbox groups, radio groups and
rich selects consistent with their members.

  • Run YAML scenarios against groups and check the outcome
  • Serve configured groups over HTTP with live WebSocket updates
  • Fan changes out to Redis and Kafka
  • Store form submissions on disk, in S3 or in SQL`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				errors.DisableColors()
			}
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		runCmd(),
		serveCmd(),
		validateCmd(),
		tokenCmd(),
		errorsCmd(),
		versionCmd(),
	)

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.New("E400").Wrap(err).WithSuggestionf("see %s --help", cmd.CommandPath())
	})
	return rootCmd
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
