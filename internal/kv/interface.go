package kv

import "context"

// Repository is a durable string-keyed store of opaque values.
//
// Get returns (nil, nil) when the key is absent. Delete of an absent key is
// not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context, prefix string) (map[string][]byte, error)
}

// Store is a Repository that can also apply several writes atomically.
type Store interface {
	Repository
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}
