package output

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

// Fields whose integer value is a Unix millisecond instant.
var timeFields = map[string]bool{
	"expires": true,
}

// TableFormatter formats data as an aligned two-column table.
type TableFormatter struct {
	NoHeaders bool
}

// Format formats data as a table.
// Supports: *Table, Table, and anything whose JSON encoding is an object.
// Other values fall back to JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	switch t := data.(type) {
	case *Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	case Table:
		return t.RenderWithOptions(w, f.NoHeaders)
	}

	v, err := generic(data)
	if err != nil {
		return err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return (&JSONFormatter{}).Format(w, data)
	}
	return objectTable(obj).RenderWithOptions(w, f.NoHeaders)
}

// objectTable renders an object as FIELD/VALUE rows, key first and the
// rest sorted.
func objectTable(obj map[string]any) *Table {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		if k != "key" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if _, ok := obj["key"]; ok {
		keys = append([]string{"key"}, keys...)
	}

	table := &Table{Headers: []string{"FIELD", "VALUE"}}
	for _, k := range keys {
		table.AddRow(k, formatValue(k, obj[k]))
	}
	return table
}

// formatValue formats a decoded JSON value for display.
func formatValue(name string, v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		if x == "" {
			return "-"
		}
		return x
	case bool:
		return strconv.FormatBool(x)
	case int64:
		if timeFields[name] && x > 0 {
			return time.UnixMilli(x).UTC().Format(time.RFC3339)
		}
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprintf("%v", x)
		}
		return string(raw)
	}
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table with options.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// SetHeaders sets the table headers.
func (t *Table) SetHeaders(headers ...string) {
	t.Headers = headers
}
