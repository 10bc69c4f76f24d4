package progress

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/queue"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/utils"
)

// Bridge is the single process-wide subscriber to the backend's progress
// stream. It reconciles each event into the progress and queue stores.
// Events are not causally ordered with dispatch results; every handler is
// an idempotent key-scoped upsert so either arrival order converges to the
// same state.
type Bridge struct {
	store *Store
	queue *queue.Store
	log   zerolog.Logger
}

func NewBridge(store *Store, q *queue.Store) *Bridge {
	return &Bridge{
		store: store,
		queue: q,
		log:   utils.GetLogger("progress-bridge"),
	}
}

// Run consumes events until the channel closes or the context is done.
// Intended to run as a goroutine for the life of the process.
func (b *Bridge) Run(ctx context.Context, events <-chan Entry) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			b.Handle(e)
		}
	}
}

// Handle applies one event synchronously.
func (b *Bridge) Handle(e Entry) {
	if e.Cancelled {
		b.log.Debug().Str("downloadId", e.DownloadID).Msg("Cancel acknowledged")
		b.queue.ConfirmCancelled(e.DownloadID)
		return
	}
	b.store.Ingest(e)
	b.queue.MarkObserved(e.DownloadID)
	if e.IsComplete && e.OutputPath != "" {
		b.queue.UpdateOnSuccess(e.DownloadID, e.OutputPath, e.Title)
	}
}
