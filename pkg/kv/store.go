package kv

import "context"

// Storage keys used by the storefront. The durable layout is exactly two
// entries: the registered-user registry and the last active user.
const (
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
)

// Store is the durable key-value surface the session registry and the
// session mirror are flushed to. Values are opaque JSON blobs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}
