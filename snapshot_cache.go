package tinyx

import lru "github.com/hashicorp/golang-lru"

// SnapshotCache remembers decoded snapshots by checkpoint link. A
// Checkpointer also consults it to avoid storing a snapshot twice, so a
// cache should not be shared between Checkpointers with different Persists.
type SnapshotCache interface {
	// Add records a snapshot that has been persisted under link.
	Add(link, snapshot interface{})
	// Contains indicates the snapshot under link has already been persisted.
	Contains(link interface{}) bool
	// Get retrieves the decoded snapshot stored under link, if cached.
	Get(link interface{}) (snapshot interface{}, ok bool)
}

// NewSnapshotCache creates an ARC cache holding up to size snapshots.
func NewSnapshotCache(size int) SnapshotCache {
	cache, err := lru.NewARC(size)
	if err != nil {
		panic(err)
	}
	return cache
}
