package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/royalti/pkg/db/option"
	"gorm.io/gorm"
)

// Store is a gorm-backed table of T rows keyed by a snowflake id column.
// Each call runs on the handle the store was built with, so building a store
// from a transaction keeps its writes inside that transaction.
type Store[T any] interface {
	// Get returns nil, nil when no row has the id.
	Get(ctx context.Context, id snowflake.ID) (*T, error)
	GetMany(ctx context.Context, ids []snowflake.ID) ([]*T, error)
	List(ctx context.Context, opts ...option.QueryOption) ([]*T, error)
	Count(ctx context.Context, opts ...option.QueryOption) (int64, error)
	Insert(ctx context.Context, row *T) error
	InsertMany(ctx context.Context, rows []T) error
	// Patch reports how many rows matched the id.
	Patch(ctx context.Context, id snowflake.ID, columns map[string]any) (int64, error)
	Delete(ctx context.Context, opts ...option.QueryOption) error
}

func New[T any](db *gorm.DB) Store[T] {
	return &store[T]{db: db}
}
