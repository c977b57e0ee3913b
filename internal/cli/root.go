package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pluginforge/create-plugin/internal/branding"
	"github.com/pluginforge/create-plugin/internal/config"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string

	verbose bool
	logger  = log.New(io.Discard)
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName() + " [directory]",
	Short: branding.Description(),
	Long: branding.DisplayName() + ` scaffolds a new plugin project.

It downloads a starter template, unpacks it into the target directory and
writes a manifest.json from the details you enter. The directory must not
exist yet; it defaults to the plugin id in the current directory.

Examples:
  ` + branding.CLIName() + `                     Ask for everything interactively
  ` + branding.CLIName() + ` word-counter        Create ./word-counter
  ` + branding.CLIName() + ` -t ts --yes --id word-counter --author "Ada"`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		logger = newLogger(cmd.ErrOrStderr(), verbose)
	},
	RunE: runCreate,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// newLogger builds the CLI logger. Debug output is only shown with --verbose.
func newLogger(w io.Writer, debug bool) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		Prefix: branding.CLIName(),
	})
	if debug {
		l.SetLevel(log.DebugLevel)
	}
	return l
}

// Execute runs the root command with build info injected via ldflags. An
// interrupt cancels the running download. Errors are printed to stderr before
// being returned.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:")+" "+err.Error())
		return err
	}
	return nil
}
