// Package sanitize cleans user-supplied text before it is stored or
// rendered.
package sanitize

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// scriptBlock matches a whole <script> element with the whitespace around
// it, so removing it leaves exactly one separating space.
var scriptBlock = regexp.MustCompile(`(?i)\s*<script\b[^>]*>[\s\S]*?</script\s*>\s*`)

var (
	strict = bluemonday.StrictPolicy()

	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithHardWraps(),
			gmhtml.WithXHTML(),
		),
	)
	ugc = newUGCPolicy()
)

func newUGCPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowImages()
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)
	return p
}

// Comment strips script blocks and every other tag from s and trims the
// result. Entities produced by stripping are decoded so the stored text is
// plain.
func Comment(s string) string {
	s = scriptBlock.ReplaceAllString(s, " ")
	s = strict.Sanitize(s)
	s = html.UnescapeString(s)
	return strings.TrimSpace(s)
}

// Markdown renders source to HTML and sanitizes the output for display.
func Markdown(source string) (string, error) {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return string(ugc.SanitizeBytes(buf.Bytes())), nil
}
