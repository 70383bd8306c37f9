package helpers

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
)

var md = goldmark.New()

// RenderMarkdown converts operator-written markdown to HTML. Raw HTML in the
// source is dropped by goldmark's default renderer. On a render error the
// escaped source is returned in a paragraph.
func RenderMarkdown(src string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "<p>" + html.EscapeString(src) + "</p>"
	}
	return buf.String()
}
