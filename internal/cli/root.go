// Package cli implements the sheetsql command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leengari/sheetsql/internal/dispatch"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Source     string // overrides the configured source mode when set
	Verbose    bool
	Format     string // "text" | "json"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sheetsql CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sheetsql",
		Short: "Run SQL against a database, a spreadsheet, or both",
		Long: `sheetsql runs SQL statements against a relational database and against
worksheets loaded from Google Sheets or a local directory. Mutations on a
worksheet are written back to it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if opts.Source != "" {
				if _, err := dispatch.ParseMode(opts.Source); err != nil {
					return WrapExitError(ExitCommandError, "invalid --source", err)
				}
			}
			return nil
		},
	}

	addGlobalFlags(cmd.PersistentFlags(), opts)

	// Add subcommands
	cmd.AddCommand(NewExecCommand(opts))
	cmd.AddCommand(NewAskCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewTablesCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}

func addGlobalFlags(fs *pflag.FlagSet, opts *RootOptions) {
	fs.StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	fs.StringVarP(&opts.Source, "source", "s", "", "data source: relational, tabular or both")
	fs.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	fs.StringVar(&opts.Format, "format", "text", "output format (json|text)")
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
