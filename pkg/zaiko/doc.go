// Package zaiko resolves zaiko event pages to the name of their organizer
// and validates the inputs of the image endpoint.
//
// An event page at {base}/event/{id} carries a meta refresh pointing at the
// organizer's site; the organizer name is that site's og:site_name. The
// lookup runs as a two-step extract.Pipeline, so a missing redirect never
// triggers the second fetch.
package zaiko
