// Package util holds small internal helpers shared across packages.
package util

import (
	"bytes"
	"strings"
	"text/template"
)

// RenderTemplate expands {{...}} placeholders in text using Go's
// text/template syntax. Plain strings without template markers pass through
// untouched.
func RenderTemplate(text string, state map[string]any) (string, error) {
	if !strings.Contains(text, "{{") { // fast path: no template markers
		return text, nil
	}

	tmpl, err := template.New("prompt").Parse(text)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, state); err != nil {
		return "", err
	}

	return buf.String(), nil
}
