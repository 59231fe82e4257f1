package tinyx

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"github.com/minio/blake2b-simd"
)

// CheckpointConfig controls how snapshots are encoded and persisted.
type CheckpointConfig struct {
	// StoreImmutablePartsWith is used to store and load encoded snapshots.
	StoreImmutablePartsWith Persist

	// Marshal function, defaults to EncodeJSON
	Marshal func(any) ([]byte, error)

	// Unmarshal function, defaults to DecodeJSON
	Unmarshal func([]byte) (any, error)

	// SnapshotCache caches decoded snapshots and remembers which links
	// were already stored. Optional.
	SnapshotCache SnapshotCache

	// Logger receives debug records for saves and loads; defaults to
	// slog.Default().
	Logger *slog.Logger
}

// Checkpoint identifies a saved snapshot.
type Checkpoint struct {
	// Link is the content address of the encoded snapshot.
	Link  string
	Taken time.Time
}

// Checkpointer saves snapshots content-addressed and loads them back.
type Checkpointer struct {
	persist   Persist
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte) (any, error)
	cache     SnapshotCache
	log       *slog.Logger
	latest    *Checkpoint
}

// NewCheckpointer validates cfg and fills in defaults.
func NewCheckpointer(cfg CheckpointConfig) (*Checkpointer, error) {
	if cfg.StoreImmutablePartsWith == nil {
		return nil, fmt.Errorf("no persistence mechanism set; set CheckpointConfig.StoreImmutablePartsWith")
	}
	c := &Checkpointer{
		persist:   cfg.StoreImmutablePartsWith,
		marshal:   cfg.Marshal,
		unmarshal: cfg.Unmarshal,
		cache:     cfg.SnapshotCache,
		log:       cfg.Logger,
	}
	if c.marshal == nil {
		c.marshal = EncodeJSON
	}
	if c.unmarshal == nil {
		c.unmarshal = DecodeJSON
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c, nil
}

// Save encodes snapshot and stores it under the digest of its encoding.
// Equal snapshots therefore share one link, and a link already known to the
// cache is not stored again.
func (c *Checkpointer) Save(ctx context.Context, snapshot any) (*Checkpoint, error) {
	encoded, err := c.marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	sum := blake2b.Sum256(encoded)
	link := base64.RawURLEncoding.EncodeToString(sum[:])
	cp := &Checkpoint{Link: link, Taken: time.Now()}
	if c.cache != nil && c.cache.Contains(link) {
		c.log.DebugContext(ctx, "snapshot already stored", "link", link)
		c.latest = cp
		return cp, nil
	}
	if err := c.persist.Store(ctx, link, encoded); err != nil {
		return nil, fmt.Errorf("persist store: %w", err)
	}
	if c.cache != nil {
		c.cache.Add(link, Freeze(snapshot))
	}
	c.log.DebugContext(ctx, "stored snapshot", "link", link, "bytes", len(encoded))
	c.latest = cp
	return cp, nil
}

// Load returns the frozen snapshot saved as cp.
func (c *Checkpointer) Load(ctx context.Context, cp *Checkpoint) (any, error) {
	if cp == nil || cp.Link == "" {
		return nil, fmt.Errorf("load: empty checkpoint: %w", ErrNotFound)
	}
	if c.cache != nil {
		if snapshot, ok := c.cache.Get(cp.Link); ok {
			return snapshot, nil
		}
	}
	encoded, err := c.persist.Load(ctx, cp.Link)
	if err != nil {
		return nil, fmt.Errorf("persist load %s: %w", cp.Link, err)
	}
	snapshot, err := c.unmarshal(encoded)
	if err != nil {
		return nil, fmt.Errorf("unmarshaling %s: %w", cp.Link, err)
	}
	Freeze(snapshot)
	c.log.DebugContext(ctx, "loaded snapshot", "link", cp.Link, "bytes", len(encoded))
	if c.cache != nil {
		c.cache.Add(cp.Link, snapshot)
	}
	return snapshot, nil
}

// Restore creates a new store from the snapshot saved as cp.
func (c *Checkpointer) Restore(ctx context.Context, cp *Checkpoint, middleware ...Middleware) (Store, error) {
	snapshot, err := c.Load(ctx, cp)
	if err != nil {
		return nil, err
	}
	return New(snapshot, middleware...), nil
}

// Latest returns the checkpoint most recently saved, or nil.
func (c *Checkpointer) Latest() *Checkpoint {
	return c.latest
}

// Autosave saves the whole snapshot after every commit that changed
// something. A failed save does not undo the commit: its changes are
// returned along with the error.
func (c *Checkpointer) Autosave(ctx context.Context) Middleware {
	return MiddlewareFunc(func(next Store) Store {
		return &commitStore{Store: next, commit: func(t *Transaction, payload any, path ...any) (Changes, error) {
			changes, err := next.Commit(t, payload, path...)
			if err != nil || len(changes) == 0 {
				return changes, err
			}
			if _, err := c.Save(ctx, next.Get()); err != nil {
				return changes, fmt.Errorf("autosave after %v: %w", t, err)
			}
			return changes, nil
		}}
	})
}
