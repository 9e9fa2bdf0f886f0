// Package extract pulls single fields out of fetched HTML documents and chains
// those extractions into multi-hop pipelines.
package extract

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Pattern locates one field in a document.
type Pattern interface {
	// Find returns the first capture of the first match.
	Find(document string) (string, bool)

	// String describes the pattern in error messages.
	String() string
}

// RegexPattern matches a regular expression with exactly one capture group.
type RegexPattern struct {
	re *regexp.Regexp

	// attr marks captures taken from an HTML attribute; they are entity-decoded.
	attr bool
}

// NewRegex compiles expr. The expression must contain exactly one capture group.
func NewRegex(expr string) (*RegexPattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}
	if n := re.NumSubexp(); n != 1 {
		return nil, fmt.Errorf("pattern %q has %d capture groups, want 1", expr, n)
	}
	return &RegexPattern{re: re}, nil
}

// MustRegex is like NewRegex but panics on error.
func MustRegex(expr string) *RegexPattern {
	p, err := NewRegex(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// MustAttrRegex is like MustRegex for captures inside an HTML attribute value.
// Matches are HTML-entity-decoded before they are returned.
func MustAttrRegex(expr string) *RegexPattern {
	p := MustRegex(expr)
	p.attr = true
	return p
}

// Find implements Pattern.
func (p *RegexPattern) Find(document string) (string, bool) {
	m := p.re.FindStringSubmatch(document)
	if m == nil {
		return "", false
	}
	if p.attr {
		return html.UnescapeString(m[1]), true
	}
	return m[1], true
}

// String implements Pattern.
func (p *RegexPattern) String() string {
	return p.re.String()
}

// SelectorPattern selects elements with a CSS selector and reads an attribute
// (or the text when Attr is empty) of the first element with a non-empty value.
// Attribute values come back entity-decoded by the HTML parser.
type SelectorPattern struct {
	Selector string
	Attr     string
}

// MetaProperty matches <meta property="name" content="..."> and yields the content.
func MetaProperty(name string) SelectorPattern {
	return SelectorPattern{
		Selector: fmt.Sprintf(`meta[property=%q]`, name),
		Attr:     "content",
	}
}

// Find implements Pattern.
func (p SelectorPattern) Find(document string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return "", false
	}

	var (
		value string
		found bool
	)
	doc.Find(p.Selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		v := s.Text()
		if p.Attr != "" {
			v, _ = s.Attr(p.Attr)
		}
		if v == "" {
			return true
		}
		value, found = v, true
		return false
	})

	return value, found
}

// String implements Pattern.
func (p SelectorPattern) String() string {
	if p.Attr == "" {
		return p.Selector
	}
	return p.Selector + "@" + p.Attr
}
