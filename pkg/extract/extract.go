package extract

import "fmt"

// Error reports that a pattern found no match in a document.
type Error struct {
	// Label names the document or field that was being extracted.
	Label string

	// Pattern is the description of the pattern that failed.
	Pattern string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: no match for %s", e.Label, e.Pattern)
}

// Extract returns the first capture of the first match of p in document, or an
// *Error tagged with label when nothing matches.
func Extract(document string, p Pattern, label string) (string, error) {
	v, ok := p.Find(document)
	if !ok {
		return "", &Error{Label: label, Pattern: p.String()}
	}
	return v, nil
}
