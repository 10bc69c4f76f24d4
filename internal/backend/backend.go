package backend

import (
	"context"

	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/progress"
)

// DispatchOptions carries everything a single part download/merge needs.
type DispatchOptions struct {
	SourceID        string // bvid
	PartID          int64  // cid
	OutputName      string
	VideoQuality    int
	AudioQuality    int
	DownloadID      string
	ParentID        string
	DurationSeconds int
	ThumbnailURL    string
	Page            int
}

// Capability is the backend surface the orchestrator drives. Dispatch
// blocks until the part finishes and returns the final output path; a
// failure is an error whose string follows the ERR::<CODE> grammar.
// Cancel is fire-and-forget; confirmation arrives on the progress stream.
type Capability interface {
	Dispatch(ctx context.Context, opts DispatchOptions) (string, error)
	Cancel(downloadID string)
	Events() <-chan progress.Entry
}
