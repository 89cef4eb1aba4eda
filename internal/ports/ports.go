package ports

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"trackseed/internal/domain"
	"trackseed/internal/schema"
)

// Store persists schema documents into named collections.
// Implementations return domain.ErrNotConnected once closed.
type Store interface {
	Insert(ctx context.Context, collection string, doc schema.Document) (primitive.ObjectID, error)
	IDs(ctx context.Context, collection string) ([]primitive.ObjectID, error)
	// Count backs the per-collection totals reported by verify.
	Count(ctx context.Context, collection string) (int64, error)
	Users(ctx context.Context) ([]domain.User, error)
	Close(ctx context.Context) error
}

// Generator synthesizes values for generation hints.
type Generator interface {
	Value(hint schema.Hint) (any, error)
	// Intn returns a value in [0, n).
	Intn(n int) int
}
