package tinyx

import (
	"context"
	"fmt"
	"sync"
)

// Persist loads and stores encoded snapshots by name. A name always refers
// to the same bytes.
type Persist interface {
	// Store makes the given bytes accessible by the given name.
	Store(ctx context.Context, name string, value []byte) error
	// Load retrieves the previously-stored bytes by the given name. A
	// missing name should be reported with an error wrapping ErrNotFound.
	Load(ctx context.Context, name string) ([]byte, error)
}

type inMemoryStore struct {
	entries map[string][]byte
	l       sync.Mutex
}

// NewInMemoryStore provides a Persist that keeps snapshots in a map, usually
// for testing.
func NewInMemoryStore() Persist {
	return &inMemoryStore{entries: map[string][]byte{}}
}

func (ims *inMemoryStore) Store(ctx context.Context, name string, value []byte) error {
	ims.l.Lock()
	defer ims.l.Unlock()
	ims.entries[name] = append([]byte(nil), value...)
	return nil
}

func (ims *inMemoryStore) Load(ctx context.Context, name string) ([]byte, error) {
	ims.l.Lock()
	defer ims.l.Unlock()
	value, ok := ims.entries[name]
	if !ok {
		return nil, fmt.Errorf("in-memory snapshot %s: %w", name, ErrNotFound)
	}
	return value, nil
}
