package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/taskclient/pkg/account"
	"github.com/dmitrymomot/taskclient/pkg/tasks"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validFormat(f string) bool {
	switch f {
	case formatTable, formatJSON, formatYAML:
		return true
	}
	return false
}

// render writes v to w in the requested format.
func render(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return renderTable(w, v)
	}
}

func renderTable(w io.Writer, v any) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	switch v := v.(type) {
	case []tasks.Task:
		if len(v) == 0 {
			fmt.Fprintln(tw, "No tasks found.")
			break
		}
		now := time.Now()
		fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tDUE\tCREATED")
		for _, t := range v {
			due := t.DueDate.String()
			if t.IsOverdue(now) {
				due += " (overdue)"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, due, t.CreatedAt)
		}
	case tasks.Task:
		return renderTable(w, []tasks.Task{v})
	case account.User:
		fmt.Fprintln(tw, "ID\tEMAIL\tNAME")
		fmt.Fprintf(tw, "%d\t%s\t%s\n", v.ID, v.Email, v.FullName)
	default:
		return fmt.Errorf("no table layout for %T", v)
	}

	return tw.Flush()
}
