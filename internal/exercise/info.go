package exercise

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
)

// RenderDescriptionHTML converts an exercise's markdown description to HTML
// for display on the exercise info page.
func RenderDescriptionHTML(ex Exercise) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(ex.DescriptionMarkdown), &buf); err != nil {
		return "", fmt.Errorf("convert description markdown: %w", err)
	}
	return buf.String(), nil
}
