package page

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

// HTMLInspector inspects a static DOM. Selectors are CSS only; Playwright
// extensions such as :has-text() are rejected as invalid. No stylesheet is
// applied, so visibility comes from the hidden and aria-hidden attributes and
// inline display/visibility styles only. An element hidden by a CSS class
// reads as visible.
type HTMLInspector struct {
	doc *goquery.Document
	url string
}

var _ Inspector = &HTMLInspector{}

func NewHTMLInspector(html, url string) (*HTMLInspector, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page html: %w", err)
	}

	return &HTMLInspector{doc: doc, url: url}, nil
}

func (h *HTMLInspector) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return innerText(h.doc.Find("body")), nil
}

func (h *HTMLInspector) URL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return h.url, nil
}

func (h *HTMLInspector) Query(ctx context.Context, selector string) ([]Element, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := cascadia.ParseGroup(selector); err != nil {
		return nil, fmt.Errorf("invalid selector '%s': %w", selector, err)
	}

	sel := h.doc.Find(selector)
	elements := make([]Element, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, domElement{sel: s})
	})

	return elements, nil
}

type domElement struct {
	sel *goquery.Selection
}

func (e domElement) IsVisible(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if t, _ := e.sel.Attr("type"); strings.EqualFold(t, "hidden") {
		return false, nil
	}

	for s := e.sel; s.Length() > 0; s = s.Parent() {
		if hidden(s) {
			return false, nil
		}
	}

	return true, nil
}

func hidden(s *goquery.Selection) bool {
	if _, ok := s.Attr("hidden"); ok {
		return true
	}

	if v, _ := s.Attr("aria-hidden"); strings.EqualFold(v, "true") {
		return true
	}

	style, _ := s.Attr("style")
	style = strings.ToLower(strings.ReplaceAll(style, " ", ""))

	return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
}

func (e domElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e domElement) Text(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return innerText(e.sel), nil
}

var blockElements = map[string]struct{}{
	"address": {}, "article": {}, "aside": {}, "blockquote": {}, "dd": {},
	"details": {}, "dialog": {}, "div": {}, "dl": {}, "dt": {}, "fieldset": {},
	"figcaption": {}, "figure": {}, "footer": {}, "form": {}, "h1": {}, "h2": {},
	"h3": {}, "h4": {}, "h5": {}, "h6": {}, "header": {}, "hr": {}, "li": {},
	"main": {}, "nav": {}, "ol": {}, "p": {}, "pre": {}, "section": {},
	"summary": {}, "table": {}, "tbody": {}, "tfoot": {}, "thead": {}, "tr": {},
	"ul": {},
}

var skippedElements = map[string]struct{}{
	"head": {}, "noscript": {}, "script": {}, "style": {}, "template": {},
}

// innerText renders the rendered text of the selection's children in the
// manner of HTMLElement.innerText: hidden subtrees are dropped, block
// elements sit on their own lines and whitespace inside a line collapses.
func innerText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		writeText(&b, c)
	})

	lines := strings.Split(b.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}

	return strings.Join(out, "\n")
}

func writeText(b *strings.Builder, s *goquery.Selection) {
	name := goquery.NodeName(s)
	switch name {
	case "#text":
		b.WriteString(strings.Map(func(r rune) rune {
			if r == '\n' || r == '\r' {
				return ' '
			}
			return r
		}, s.Text()))
		return
	case "#comment", "#doctype":
		return
	case "br":
		b.WriteByte('\n')
		return
	}

	if _, skip := skippedElements[name]; skip || hidden(s) {
		return
	}

	_, block := blockElements[name]
	if block {
		b.WriteByte('\n')
	}

	s.Contents().Each(func(_ int, c *goquery.Selection) {
		writeText(b, c)
	})

	switch {
	case block:
		b.WriteByte('\n')
	case name == "td" || name == "th":
		b.WriteByte(' ')
	}
}
