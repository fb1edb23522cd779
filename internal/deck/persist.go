package deck

import (
	"context"
	"log/slog"
)

// writeRequest is one whole-bucket snapshot headed for the database.
// replies, when present, receive the outcome of the save that finally
// lands this state (which may be a later, superseding snapshot).
type writeRequest[T any] struct {
	snapshot []T
	replies  []chan error
}

// snapshotWriter persists whole-bucket snapshots on a background
// goroutine, coalescing bursts: a snapshot enqueued while another is still
// pending replaces it, since every snapshot carries the full desired
// bucket contents. All saves for a bucket run on the one goroutine, so
// they apply in dispatch order. Last write wins by dispatch order.
type snapshotWriter[T any] struct {
	bucket string
	save   func(context.Context, []T) error
	logger *slog.Logger

	ch   chan writeRequest[T]
	done chan struct{}
}

func newSnapshotWriter[T any](bucket string, save func(context.Context, []T) error, logger *slog.Logger) *snapshotWriter[T] {
	w := &snapshotWriter[T]{
		bucket: bucket,
		save:   save,
		logger: logger,
		ch:     make(chan writeRequest[T], 1),
		done:   make(chan struct{}),
	}
	go w.run()
	return w
}

// enqueue hands a snapshot to the writer without ever blocking the caller.
func (w *snapshotWriter[T]) enqueue(snapshot []T) {
	w.dispatch(snapshot, nil)
}

// dispatch hands a snapshot to the writer, never blocking. A non-nil
// reply receives the save outcome once this state (or a superseding later
// snapshot) has been written.
func (w *snapshotWriter[T]) dispatch(snapshot []T, reply chan error) {
	req := writeRequest[T]{snapshot: snapshot}
	if reply != nil {
		req.replies = append(req.replies, reply)
	}
	for {
		select {
		case w.ch <- req:
			return
		default:
		}
		// Channel full: a stale snapshot is still pending. Drop it and
		// retry; the new snapshot supersedes it entirely. Anyone awaiting
		// the superseded snapshot is answered by the newer write, whose
		// state includes everything dispatched before it.
		select {
		case stale := <-w.ch:
			req.replies = append(req.replies, stale.replies...)
		default:
		}
	}
}

func (w *snapshotWriter[T]) run() {
	defer close(w.done)
	for req := range w.ch {
		err := w.save(context.Background(), req.snapshot)
		if err != nil && len(req.replies) == 0 {
			// In-memory state is now ahead of disk until the next
			// successful write of this bucket. Not retried.
			w.logger.Error("bucket write failed",
				"bucket", w.bucket,
				"records", len(req.snapshot),
				"error", err)
		}
		for _, reply := range req.replies {
			reply <- err
		}
	}
}

// close stops the writer after draining any pending snapshot.
func (w *snapshotWriter[T]) close() {
	close(w.ch)
	<-w.done
}
