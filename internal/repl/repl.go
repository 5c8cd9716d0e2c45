package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/leengari/sheetsql/internal/dispatch"
	"github.com/leengari/sheetsql/internal/domain/data"
	"github.com/leengari/sheetsql/internal/domain/schema"
)

// Session is the part of the engine the loop drives
type Session interface {
	Execute(ctx context.Context, statement string) (*dispatch.Outcome, error)
	Tables() []string
	Reload(ctx context.Context) error
	Mode() dispatch.Mode
	SetMode(mode dispatch.Mode) error
	SchemaContext(ctx context.Context) (string, error)
}

// Options tunes the loop
type Options struct {
	Verbose bool // also print the relational error behind a fallback
}

// Start reads one statement per line from in until EOF, exit or \q. The
// prompt and banner are shown only when in is a terminal.
func Start(ctx context.Context, in io.Reader, out io.Writer, sess Session, opts Options) error {
	interactive := isTerminal(in)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	if interactive {
		fmt.Fprintln(out, "Welcome to sheetsql")
		fmt.Fprintf(out, "Source: %s. Type 'exit' or '\\q' to quit.\n", sess.Mode())
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if interactive {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		if line == "exit" || line == "\\q" {
			return nil
		}

		if handled := command(ctx, out, sess, line); handled {
			continue
		}

		result, err := sess.Execute(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			if opts.Verbose && result != nil && result.RelationalErr != nil {
				fmt.Fprintf(out, "Relational error: %v\n", result.RelationalErr)
			}
			continue
		}

		PrintResult(out, result, opts.Verbose)
	}
}

// command runs a meta command and reports whether line was one
func command(ctx context.Context, out io.Writer, sess Session, line string) bool {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case "tables", "ls":
		if len(fields) != 1 {
			return false
		}
		fmt.Fprintln(out, "Available tables:")
		for _, name := range sess.Tables() {
			fmt.Fprintf(out, "  - %s\n", name)
		}
	case "reload":
		if len(fields) != 1 {
			return false
		}
		if err := sess.Reload(ctx); err != nil {
			fmt.Fprintf(out, "Error reloading sheets: %v\n", err)
			return true
		}
		fmt.Fprintln(out, "Sheets reloaded")
	case "schema":
		if len(fields) != 1 {
			return false
		}
		text, err := sess.SchemaContext(ctx)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return true
		}
		fmt.Fprint(out, text)
	case "mode":
		if len(fields) == 1 {
			fmt.Fprintf(out, "Source: %s\n", sess.Mode())
			return true
		}
		if err := sess.SetMode(dispatch.Mode(strings.Join(fields[1:], " "))); err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			return true
		}
		fmt.Fprintf(out, "Source: %s\n", sess.Mode())
	default:
		return false
	}
	return true
}

// PrintResult renders an outcome: message, table, warning and, in verbose
// mode, the relational error a fallback discarded
func PrintResult(w io.Writer, res *dispatch.Outcome, verbose bool) {
	if res == nil {
		return
	}

	if res.Message != "" {
		fmt.Fprintln(w, res.Message)
	}

	if res.Table != nil {
		PrintTable(w, res.Table)
	}

	if res.Warning != nil {
		fmt.Fprintf(w, "Warning: %v\n", res.Warning)
	}
	if verbose && res.RelationalErr != nil {
		fmt.Fprintf(w, "Relational error (fell back to %s): %v\n", res.Route, res.RelationalErr)
	}
}

// PrintTable writes t as aligned columns under a --- separator
func PrintTable(w io.Writer, t *schema.Table) {
	if len(t.Columns) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	// Header
	fmt.Fprintln(tw, strings.Join(t.Columns, "\t"))

	// Separator
	sep := make([]string, len(t.Columns))
	for i := range sep {
		sep[i] = "---"
	}
	fmt.Fprintln(tw, strings.Join(sep, "\t"))

	// Rows
	for _, row := range t.Rows {
		cells := make([]string, len(t.Columns))
		for i, col := range t.Columns {
			val, ok := row.Get(col)
			if !ok || val == nil {
				cells[i] = "NULL"
			} else {
				cells[i] = data.Stringify(val)
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	tw.Flush()
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
