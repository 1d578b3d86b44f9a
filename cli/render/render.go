// Package render provides output rendering for the mangle CLI.
//
// Format selection:
//   - If output is a TTY, default to table
//   - If output is not a TTY, default to json
//   - --format (or the config file) always overrides defaults
//   - Invalid formats are errors
//
// --no-color affects table output only.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format represents an output format.
type Format string

// Supported formats.
const (
	FormatJSON    Format = "json"
	FormatTable   Format = "table"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat parses a format string, returning an error for invalid formats.
// The empty string is returned as-is so the caller can apply a default.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatTable, FormatYAML, FormatMsgpack, "":
		return f, nil
	default:
		return "", fmt.Errorf("invalid format: %q (must be json, table, yaml, or msgpack)", s)
	}
}

// Renderer handles output formatting.
type Renderer struct {
	format Format
	out    io.Writer
	styles styles
}

// NewRenderer creates a renderer writing to out. An empty format selects
// table for terminals and json otherwise.
func NewRenderer(out io.Writer, format string, noColor bool) (*Renderer, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	if f == "" {
		if file, ok := out.(*os.File); ok && isTTY(file) {
			f = FormatTable
		} else {
			f = FormatJSON
		}
	}
	return NewRendererWithWriter(f, noColor, out), nil
}

// NewRendererWithWriter creates a renderer with a custom writer (for testing).
func NewRendererWithWriter(format Format, noColor bool, out io.Writer) *Renderer {
	return &Renderer{
		format: format,
		out:    out,
		styles: newStyles(lipgloss.NewRenderer(out), noColor),
	}
}

// Format returns the selected format.
func (r *Renderer) Format() Format {
	return r.format
}

// Render outputs the data in the configured format.
func (r *Renderer) Render(data any) error {
	switch r.format {
	case FormatJSON:
		enc := json.NewEncoder(r.out)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case FormatYAML:
		enc := yaml.NewEncoder(r.out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return err
		}
		return enc.Close()
	case FormatMsgpack:
		enc := msgpack.NewEncoder(r.out)
		enc.SetCustomStructTag("json")
		return enc.Encode(data)
	case FormatTable:
		return r.renderTable(data)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

// renderTable writes one "label: value" row per field of a struct or map.
// String slices are written one element per row under a single label.
func (r *Renderer) renderTable(data any) error {
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < v.NumField(); i++ {
			field := t.Field(i)
			if !field.IsExported() {
				continue
			}
			name, omitEmpty := fieldName(field)
			if name == "-" || (omitEmpty && v.Field(i).IsZero()) {
				continue
			}
			r.writeRow(w, name, v.Field(i))
		}
	default:
		fmt.Fprintf(w, "%v\n", data)
	}

	return w.Flush()
}

func (r *Renderer) writeRow(w io.Writer, name string, v reflect.Value) {
	label := r.styles.render(r.styles.label, name+":")

	if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.String {
		if v.Len() == 0 {
			fmt.Fprintf(w, "%s\t%s\n", label, "-")
			return
		}
		style := r.styles.warning
		if name == "errors" {
			style = r.styles.failure
		}
		for i := 0; i < v.Len(); i++ {
			fmt.Fprintf(w, "%s\t%s\n", label, r.styles.render(style, v.Index(i).String()))
			label = ""
		}
		return
	}

	fmt.Fprintf(w, "%s\t%s\n", label, r.formatValue(v))
}

func (r *Renderer) formatValue(v reflect.Value) string {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return "-"
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return r.styles.render(r.styles.success, "true")
		}
		return r.styles.render(r.styles.failure, "false")
	case reflect.String:
		if v.Len() == 0 {
			return "-"
		}
		return v.String()
	case reflect.Slice, reflect.Array:
		return strings.Trim(fmt.Sprint(v.Interface()), "[]")
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// fieldName returns the json tag name of a field and whether it is omitempty.
func fieldName(f reflect.StructField) (string, bool) {
	tag := f.Tag.Get("json")
	if tag == "" {
		return strings.ToLower(f.Name), false
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name == "" {
		name = strings.ToLower(f.Name)
	}
	return name, strings.Contains(opts, "omitempty")
}

// isTTY returns true if the file is a terminal.
func isTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
