package textrender

import "context"

type snapshotKey struct{}

// ContextWithSnapshot carries the snapshot of a nested render so directives
// expanded inside map text know how deep they are.
func ContextWithSnapshot(ctx context.Context, snapshot Snapshot) context.Context {
	return context.WithValue(ctx, snapshotKey{}, snapshot)
}

// SnapshotFromContext returns the snapshot stored by ContextWithSnapshot.
func SnapshotFromContext(ctx context.Context) (Snapshot, bool) {
	if ctx == nil {
		return Snapshot{}, false
	}
	snapshot, ok := ctx.Value(snapshotKey{}).(Snapshot)
	return snapshot, ok
}
