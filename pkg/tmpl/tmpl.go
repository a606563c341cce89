// Package tmpl renders user supplied Go templates, such as custom export
// line formats.
package tmpl

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// shellQuote returns a shell-safe quoted string. It wraps the string in single
// quotes and escapes any existing single quotes using the '\'' technique.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	escaped := strings.ReplaceAll(s, "'", `'\''`)
	return "'" + escaped + "'"
}

// orDefault returns s, or fallback when s is empty.
func orDefault(fallback, s string) string {
	if s == "" {
		return fallback
	}
	return s
}

var funcs = template.FuncMap{
	"shq":     shellQuote,
	"default": orDefault,
	"lower":   strings.ToLower,
	"upper":   strings.ToUpper,
}

// Template is a parsed template that can be executed many times.
type Template struct {
	t *template.Template
}

// Parse compiles src. Execution fails on keys missing from map data.
//
// Available template functions:
//   - shq: shell-quote a string
//   - default: {{ .Name | default "unknown" }}
//   - lower, upper
func Parse(src string) (*Template, error) {
	t, err := template.New("").Funcs(funcs).Option("missingkey=error").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return &Template{t: t}, nil
}

// Execute renders the template with data.
func (t *Template) Execute(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

// Render parses and executes src in one step.
func Render(src string, data any) (string, error) {
	t, err := Parse(src)
	if err != nil {
		return "", err
	}
	return t.Execute(data)
}
