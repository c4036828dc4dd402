// ABOUTME: Command output formatting
// ABOUTME: Tables for terminals and JSON for pipes, selectable with --output
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"golang.org/x/term"
)

const (
	formatAuto  = "auto"
	formatJSON  = "json"
	formatTable = "table"
)

// useTable decides the output format. auto picks a table only when writing to a terminal.
func useTable(format string, w io.Writer) (bool, error) {
	switch format {
	case formatJSON:
		return false, nil
	case formatTable:
		return true, nil
	case formatAuto, "":
		f, ok := w.(*os.File)
		return ok && term.IsTerminal(int(f.Fd())), nil
	default:
		return false, fmt.Errorf("unknown output format %q", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// render writes v as JSON, or calls table with a tabwriter.
func (a *app) render(v any, table func(w *tabwriter.Writer)) error {
	asTable, err := useTable(a.format, a.out)
	if err != nil {
		return err
	}
	if !asTable {
		return writeJSON(a.out, v)
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	table(w)
	return w.Flush()
}
