package workers

import (
	"context"
	"time"

	"github.com/pegwheel/pegwheel/pkg/log"
	"github.com/pegwheel/pegwheel/pkg/queue"
	"github.com/pegwheel/pegwheel/pkg/store"
)

const DefaultFlushInterval = 250 * time.Millisecond

// WriteRequest is one outbound store write. When Append is set the
// value is written under a freshly allocated child key of Path.
type WriteRequest struct {
	Path   string
	Value  interface{}
	Append bool
}

// SyncWorker drains queued store writes in order. Failed writes are
// logged and dropped; the optimistic local state is never rolled back
// and no retry is attempted.
type SyncWorker struct {
	store    store.DocumentStore
	queue    queue.Queue
	wake     <-chan struct{}
	interval time.Duration
}

type NewSyncWorkerOptions struct {
	Store    store.DocumentStore
	Queue    queue.Queue
	Wake     <-chan struct{}
	Interval time.Duration
}

// NewSyncWorker creates a new SyncWorker. The worker flushes whenever
// it is woken and on a fallback interval.
func NewSyncWorker(opts NewSyncWorkerOptions) *SyncWorker {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultFlushInterval
	}
	return &SyncWorker{
		store:    opts.Store,
		queue:    opts.Queue,
		wake:     opts.Wake,
		interval: interval,
	}
}

func (w *SyncWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.wake:
			w.flush(ctx)
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

func (w *SyncWorker) flush(ctx context.Context) {
	for _, item := range w.queue.ReadAllMessages() {
		req, ok := item.(WriteRequest)
		if !ok {
			log.Error("Unexpected item in sync queue: %T", item)
			continue
		}
		w.write(ctx, req)
	}
}

func (w *SyncWorker) write(ctx context.Context, req WriteRequest) {
	path := req.Path
	if req.Append {
		key, err := w.store.Create(ctx, req.Path)
		if err != nil {
			log.Error("Failed to allocate key under %s: %v", req.Path, err)
			return
		}
		path = req.Path + "/" + key
	}
	if err := w.store.Write(ctx, path, req.Value); err != nil {
		log.Error("Failed to push %s: %v", path, err)
	}
}
