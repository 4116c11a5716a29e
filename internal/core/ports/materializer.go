package ports

import (
	"context"

	"github.com/ewilliams-labs/cadenza/internal/core/domain"
)

// PlaylistMaterializer turns a finished run result into a playlist on the
// remote catalog. The engine itself never mutates the catalog; whoever owns
// the run decides whether to materialize.
type PlaylistMaterializer interface {
	// Materialize creates a playlist from a non-empty ordered track id list
	// and returns the catalog id of the created playlist.
	Materialize(ctx context.Context, result domain.Result) (string, error)
}
