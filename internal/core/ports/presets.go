package ports

import (
	"context"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
)

// Preset bundles one saved configuration under a user-chosen name.
type Preset struct {
	Name   string                `json:"name"`
	Seeds  domain.SeedSpec       `json:"seeds"`
	Filter domain.FilterSpec     `json:"filter"`
	Params domain.PlaylistParams `json:"params"`
}

// PresetRepository persists presets keyed by name.
type PresetRepository interface {
	GetByName(ctx context.Context, name string) (Preset, error)
	Save(ctx context.Context, p Preset) error
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}
