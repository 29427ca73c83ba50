package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charlesng35/dairyadmin/pkg/client"
)

// resourceColumns lists the row fields printed per list resource.
var resourceColumns = map[string][]string{
	"roles":       {"id", "name", "category_id", "status"},
	"categories":  {"id", "name", "status"},
	"modules":     {"id", "name", "route", "parent_id", "status"},
	"users":       {"id", "name", "email", "role_id", "status"},
	"banks":       {"id", "name", "branch", "ifsc_code", "status"},
	"villages":    {"id", "code", "name", "mcc_code", "status"},
	"mccs":        {"id", "code", "name", "status"},
	"mpps":        {"id", "code", "name", "mcc_code", "status"},
	"form-steps":  {"id", "name", "sort_order", "status"},
	"hierarchy":   {"id", "level", "status"},
	"audit-logs":  {"id", "action", "resource", "result", "created_at"},
	"permissions": {"id", "name", "route"},
}

func writeTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(headers, "\t")))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writePagination(w io.Writer, p client.Pagination) {
	if p.TotalPages <= 0 {
		return
	}
	fmt.Fprintf(w, "page %d of %d (%d items)\n", p.CurrentPage, p.TotalPages, p.TotalItems)
}

// rawRows projects raw list rows onto columns. Missing fields render blank.
func rawRows(rows []json.RawMessage, columns []string) ([][]string, error) {
	out := make([][]string, 0, len(rows))
	for _, raw := range rows {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var fields map[string]any
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("decode row: %w", err)
		}
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = cell(fields[col])
		}
		out = append(out, cells)
	}
	return out, nil
}

func cell(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case bool:
		return statusLabel(value)
	case string:
		return value
	case []any:
		parts := make([]string, len(value))
		for i, item := range value {
			parts[i] = cell(item)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		if name, ok := value["name"]; ok {
			return cell(name)
		}
		return fmt.Sprint(value)
	default:
		return fmt.Sprint(value)
	}
}

func statusLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}
