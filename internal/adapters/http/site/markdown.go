package site

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		extension.DefinitionList,
	),
)

// renderMarkdown converts an embedded content file to HTML. The content is
// compiled into the binary, so the output is trusted.
func renderMarkdown(name string) (template.HTML, error) {
	src, err := contentFS.ReadFile("content/" + name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTemplate, name, err)
	}
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrTemplate, name, err)
	}
	return template.HTML(buf.String()), nil //nolint:gosec // embedded content
}
