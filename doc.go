/*
Package tinyx provides a small store of immutable application state.
State is a tree of Records, Seqs, Maps and Sets that are frozen as soon
as a store owns them; every change goes through a named Transaction,
produces a structurally-shared copy of the tree, and reports exactly
which leaves changed.

Uses

- UI and simulation state that many observers watch but few writers touch

- Undo/redo that records diffs instead of whole copies

- Checkpointing state by content address to a file system or S3

Producing

A Mutation receives an Ops and calls Set, Update, Remove and Apply on
it. Ops never touches the input tree: each write copies the containers
along its path and shares everything else, so the old snapshot stays
valid and unchanged for anyone still holding it. Writes that leave a
value identical (see Same) copy nothing, and a commit that changes
nothing keeps the previous root, so subscribers are not bothered.

Stores

A Store holds a snapshot and commits transactions against it, optionally
at a path, in which case the mutation sees just that subtree and its diffs
come back relative to it. Select narrows a store to a subtree whose
location may itself depend on the state; Derived maps a store to any
read-only value with its own notion of equality. Middleware wraps Commit:
Logger writes each commit to a slog.Logger, EnableUndoRedo groups the
commits between UndoableActionStart and UndoableActionEnd into history,
and a Checkpointer's Autosave persists every new snapshot.

Concurrency

Stores are meant to be owned by one goroutine. Snapshots, being frozen,
can be handed to any number of goroutines; attempts to change one in place
fail with ErrFrozen.
*/
package tinyx
