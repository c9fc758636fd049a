package board

import (
	"context"

	"github.com/ritzau/brandos-canvas/pkg/graph"
)

// Persister stores the board between runs. Selection is not persisted.
type Persister interface {
	SaveNode(ctx context.Context, inst Instance) error
	DeleteNode(ctx context.Context, id string) error
	SaveEdge(ctx context.Context, e graph.Edge) error
	DeleteEdge(ctx context.Context, id string) error
	Load(ctx context.Context) ([]Instance, []graph.Edge, error)
	Close() error
}
