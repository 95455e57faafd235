// Package textx provides small text utilities used across the project.
package textx

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SanitizeText removes control characters except tab/newline/CR and trims spaces.
func SanitizeText(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == '\n' || r == '\r' || r == '\t' || (r >= 32 && r != 127) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// NormalizeLines collapses whitespace inside each line, trims the lines and
// keeps at most one blank line between paragraphs. Line structure survives so
// section headings stay detectable.
func NormalizeLines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	lines := strings.Split(SanitizeText(s), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// LooksLikeHTML reports whether s appears to contain markup.
func LooksLikeHTML(s string) bool {
	i := strings.IndexByte(s, '<')
	return i >= 0 && strings.IndexByte(s[i:], '>') > 0
}

const blockSelector = "p, div, br, li, ul, ol, h1, h2, h3, h4, h5, h6, tr, section, article, header, footer"

// HTMLToText reduces pasted HTML to plain text. Block elements become line
// breaks and list items keep a bullet. Input without markup is only normalized.
func HTMLToText(s string) string {
	if !LooksLikeHTML(s) {
		return NormalizeLines(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return NormalizeLines(s)
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
		sel.PrependHtml("- ")
	})
	doc.Find(blockSelector).Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})
	return NormalizeLines(doc.Text())
}
