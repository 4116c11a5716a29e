package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidParams marks numeric inputs rejected at the boundary.
var ErrInvalidParams = errors.New("domain: invalid parameters")

// ErrInvalidSeed indicates the selected strategy's mandatory input is absent.
var ErrInvalidSeed = errors.New("domain: invalid seed")

// ErrSeedResolution indicates a named seed entity was not found. Non-fatal
// per seed; fatal only if it empties a mandatory seed set.
var ErrSeedResolution = errors.New("domain: seed not resolved")

// InvalidSeedError reports which strategy was selected and what it was
// missing. Fatal for the run and not retried.
type InvalidSeedError struct {
	Strategy Strategy
	Reason   string
}

func (e InvalidSeedError) Error() string {
	return fmt.Sprintf("strategy %q requires %s", e.Strategy, e.Reason)
}

func (e InvalidSeedError) Is(target error) bool {
	return target == ErrInvalidSeed
}

// SeedResolutionError reports a named entity that could not be resolved.
type SeedResolutionError struct {
	Kind string // "artist", "collection", "playlist", "track"
	Name string
}

func (e SeedResolutionError) Error() string {
	return fmt.Sprintf("seed %s %q not found", e.Kind, e.Name)
}

func (e SeedResolutionError) Is(target error) bool {
	return target == ErrSeedResolution
}
