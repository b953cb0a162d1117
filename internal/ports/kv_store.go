package ports

import "context"

// KVStore is the persistence port. Get returns an error wrapping
// domain.ErrRecordNotFound when key has never been written.
type KVStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
