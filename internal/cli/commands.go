package cli

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leengari/sheetsql/internal/engine"
	"github.com/leengari/sheetsql/internal/network"
	"github.com/leengari/sheetsql/internal/repl"
)

// NewExecCommand creates the exec command.
func NewExecCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <sql>",
		Short: "Run one statement and print its result",
		Long: `Run one SQL statement against the configured source and print the result.

Example:
  sheetsql exec "SELECT * FROM employees"
  sheetsql --source both exec "UPDATE employees SET dept = 'Ops' WHERE id = 2"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			out, err := s.engine.Execute(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				if opts.Verbose && out != nil && out.RelationalErr != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Relational error: %v\n", out.RelationalErr)
				}
				return WrapExitError(ExitFailure, "statement failed", err)
			}
			return writeOutcome(cmd.OutOrStdout(), opts.Format, out, opts.Verbose)
		},
	}
}

// NewAskCommand creates the ask command.
func NewAskCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question>",
		Short: "Generate SQL for a question and run it",
		Long: `Turn a natural language question into SQL with the configured generator
command, then run the statement. The generated SQL is printed to stderr.

The generator reads a prompt (schema, instructions, question) on stdin and
writes one SQL statement to stdout.

Example:
  SHEETSQL_GENERATOR_COMMAND=./ask-model sheetsql ask "how many employees work in Ops?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			gen, err := s.generator()
			if err != nil {
				return err
			}

			sql, out, err := s.engine.Ask(cmd.Context(), gen, strings.Join(args, " "))
			if sql != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "SQL: %s\n", sql)
			}
			if err != nil {
				if sql == "" {
					return WrapExitError(ExitFailure, "sql generation failed", err)
				}
				return WrapExitError(ExitFailure, "statement failed", err)
			}
			return writeOutcome(cmd.OutOrStdout(), opts.Format, out, opts.Verbose)
		},
	}
}

// NewReplCommand creates the repl command.
func NewReplCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			return repl.Start(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), s.engine, repl.Options{Verbose: opts.Verbose})
		},
	}
}

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the session over HTTP",
		Long: `Serve the session over HTTP. Sheets are reloaded on the configured
sheets.refresh cron schedule.

Example:
  sheetsql serve --addr :8080
  curl -d '{"query": "SELECT * FROM employees"}' localhost:8080/v1/query`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			s, err := openSession(ctx, opts.RootOptions, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			if spec := s.cfg.Sheets.Refresh; spec != "" && len(s.engine.Attached()) > 0 {
				refresher, err := engine.NewRefresher(s.engine, spec, s.logger)
				if err != nil {
					return WrapExitError(ExitCommandError, "failed to schedule reload", err)
				}
				refresher.Start()
				defer refresher.Stop()
			}

			addr := s.cfg.Server.Addr
			if opts.Addr != "" {
				addr = opts.Addr
			}
			err = network.Serve(ctx, s.engine, network.Options{
				Addr:        addr,
				CORSOrigins: s.cfg.Server.CORSOrigins,
				Logger:      s.logger,
			})
			if err != nil {
				return WrapExitError(ExitCommandError, "server failed", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}

// NewTablesCommand creates the tables command.
func NewTablesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List addressable table names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			for _, name := range s.engine.Tables() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the schema description given to SQL generators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.Close()

			text, err := s.engine.SchemaContext(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "failed to describe schema", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}
}
