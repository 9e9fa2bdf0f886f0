package extract

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
)

// Fetcher retrieves a document body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Step is one hop of a pipeline: fetch the current URL, extract one field.
type Step struct {
	// Name labels the hop in errors and logs.
	Name string

	// Pattern extracts the hop's field.
	Pattern Pattern

	// FollowURL resolves the extracted value against the fetched URL so the
	// next hop can fetch it. Relative references are allowed.
	FollowURL bool
}

// StepError attributes a pipeline failure to a single hop.
// Err is the fetch error, an *Error for a missing match, or a URL error.
type StepError struct {
	Step int
	Name string
	URL  string
	Err  error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("hop %d (%s) at %s: %v", e.Step, e.Name, e.URL, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *StepError) Unwrap() error {
	return e.Err
}

// Pipeline runs its steps strictly in order, feeding each extracted value to
// the next step. The first failing step ends the run.
type Pipeline struct {
	Steps []Step
}

// Run executes the pipeline starting at start and returns the last step's value.
func (p Pipeline) Run(ctx context.Context, f Fetcher, start string) (string, error) {
	logger := zerolog.Ctx(ctx)
	current := start

	for i, step := range p.Steps {
		hop := i + 1
		fail := func(err error) (string, error) {
			return "", &StepError{Step: hop, Name: step.Name, URL: current, Err: err}
		}

		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		body, err := f.Fetch(ctx, current)
		if err != nil {
			return fail(err)
		}

		value, err := Extract(string(body), step.Pattern, step.Name)
		if err != nil {
			return fail(err)
		}

		if step.FollowURL {
			value, err = resolve(current, value)
			if err != nil {
				return fail(err)
			}
		}

		logger.Debug().
			Int("hop", hop).
			Str("step", step.Name).
			Str("url", current).
			Msg("Extracted field")

		current = value
	}

	return current, nil
}

func resolve(base, ref string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse extracted url %q: %w", ref, err)
	}

	u := b.ResolveReference(r)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("extracted url %q has unsupported scheme", ref)
	}
	return u.String(), nil
}
