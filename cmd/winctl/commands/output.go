package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/bryanchriswhite/winctl/internal/window"
	"gopkg.in/yaml.v3"
)

var outputFormat string

// printOutput writes v as JSON or YAML, or calls table for the table format.
func printOutput(out io.Writer, format string, v interface{}, table func(w *tabwriter.Writer)) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		return encoder.Encode(v)
	case "table", "":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		table(w)
		return w.Flush()
	default:
		return fmt.Errorf("unsupported format: %s (use 'table', 'json' or 'yaml')", format)
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func printState(out io.Writer, format string, s window.State) error {
	return printOutput(out, format, s, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "Handle:\t%s\n", s.Handle)
		fmt.Fprintf(w, "Title:\t%s\n", s.Title)
		fmt.Fprintf(w, "Position:\t%d,%d\n", s.Position.X, s.Position.Y)
		fmt.Fprintf(w, "Size:\t%dx%d\n", s.Size.Width, s.Size.Height)
		fmt.Fprintf(w, "Fullscreen:\t%s\n", yesNo(s.Fullscreen))
		fmt.Fprintf(w, "Maximized:\t%s\n", yesNo(s.Maximized))
		fmt.Fprintf(w, "Minimized:\t%s\n", yesNo(s.Minimized))
		fmt.Fprintf(w, "Hidden:\t%s\n", yesNo(s.Hidden))
		fmt.Fprintf(w, "Monitor:\t%d\n", s.Monitor)
		fmt.Fprintf(w, "Cursor visible:\t%s\n", yesNo(s.Cursor.Visible))
		fmt.Fprintf(w, "Cursor enabled:\t%s\n", yesNo(s.Cursor.Enabled))
		fmt.Fprintf(w, "Cursor on window:\t%s\n", yesNo(s.Cursor.OnWindow))
	})
}

func printMonitors(out io.Writer, format string, monitors []window.MonitorInfo) error {
	return printOutput(out, format, monitors, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tPOSITION\tSIZE\tSCALE\tCURRENT")
		fmt.Fprintln(w, "--\t----\t--------\t----\t-----\t-------")
		for _, m := range monitors {
			current := ""
			if m.Current {
				current = "*"
			}
			fmt.Fprintf(w, "%d\t%s\t%d,%d\t%dx%d\t%.2f\t%s\n",
				m.ID, m.Name, m.Position.X, m.Position.Y, m.Size.Width, m.Size.Height, m.Scale, current)
		}
	})
}

func printCursor(out io.Writer, format string, c window.CursorState) error {
	return printOutput(out, format, c, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "Visible:\t%s\n", yesNo(c.Visible))
		fmt.Fprintf(w, "Enabled:\t%s\n", yesNo(c.Enabled))
		fmt.Fprintf(w, "On window:\t%s\n", yesNo(c.OnWindow))
	})
}
