// Package slots is the durable key/value store behind the planner: each named
// slot holds one opaque document.
package slots

import (
	"context"
)

// Repository stores opaque values under string keys. Get returns (nil, nil)
// for an absent key; Delete of an absent key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// Batcher is implemented by stores that can apply several writes atomically.
type Batcher interface {
	Batch(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}

// batch runs fn atomically when repo supports it and directly otherwise.
func batch(ctx context.Context, repo Repository, fn func(ctx context.Context, repo Repository) error) error {
	if b, ok := repo.(Batcher); ok {
		return b.Batch(ctx, fn)
	}
	return fn(ctx, repo)
}
