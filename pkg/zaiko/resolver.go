package zaiko

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/nekok500/zzapi/pkg/extract"
)

// Hop names, used as labels of extraction failures.
const (
	StepRedirect  = "redirect target"
	StepOwnerName = "owner name"
)

// OwnerPipeline is the two-hop lookup from an event page to its owner name.
var OwnerPipeline = extract.Pipeline{
	Steps: []extract.Step{
		{
			Name:      StepRedirect,
			Pattern:   extract.MustAttrRegex(`;url='(.+)'" />`),
			FollowURL: true,
		},
		{
			Name:    StepOwnerName,
			Pattern: extract.MetaProperty("og:site_name"),
		},
	},
}

// Resolver looks up event owners.
type Resolver struct {
	base     *url.URL
	fetcher  extract.Fetcher
	pipeline extract.Pipeline
}

// NewResolver creates a resolver reading event pages below baseURL.
func NewResolver(baseURL string, fetcher extract.Fetcher) (*Resolver, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("fetcher cannot be nil")
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be an absolute http(s) url", baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	return &Resolver{
		base:     u,
		fetcher:  fetcher,
		pipeline: OwnerPipeline,
	}, nil
}

// EventURL returns the page of event id.
func (r *Resolver) EventURL(id uint64) string {
	u := *r.base
	u.Path = u.Path + "/event/" + strconv.FormatUint(id, 10)
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// OwnerName returns the organizer name of event id.
// Failures are *extract.StepError values naming the failed hop.
func (r *Resolver) OwnerName(ctx context.Context, id uint64) (string, error) {
	return r.pipeline.Run(ctx, r.fetcher, r.EventURL(id))
}

// ParseEventID parses a positive decimal event id.
func ParseEventID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, &ValidationError{Field: "event_id", Value: s, Err: ErrInvalidEventID}
	}
	return id, nil
}
