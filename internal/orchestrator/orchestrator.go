package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/backend"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/locale"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/media"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/progress"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/queue"
	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/utils"
)

// Request is one user-submitted batch: a source URL plus the (possibly
// user-edited) part list.
type Request struct {
	URL   string
	Title string
	Parts []media.Part
}

// Orchestrator validates part selections, sequences backend dispatches per
// batch, applies fail-fast abort and drives cancellation and redownload.
// It shares the queue and progress stores with the event bridge; the two
// writers touch disjoint fields per key.
type Orchestrator struct {
	backend  backend.Capability
	queue    *queue.Store
	progress *progress.Store
	banner   Banner
	language string
	notify   func(message string)
	now      func() time.Time
	log      zerolog.Logger
}

func New(c backend.Capability, q *queue.Store, p *progress.Store, language string) *Orchestrator {
	return &Orchestrator{
		backend:  c,
		queue:    q,
		progress: p,
		language: language,
		notify:   func(string) {},
		now:      time.Now,
		log:      utils.GetLogger("orchestrator"),
	}
}

// SetNotify installs the transient-notification sink (a toast in the
// original UI; a styled print in the CLI).
func (o *Orchestrator) SetNotify(fn func(string)) {
	if fn != nil {
		o.notify = fn
	}
}

func (o *Orchestrator) Banner() *Banner {
	return &o.banner
}

// Download validates the request and dispatches every selected part in
// stable array order, one at a time. Validation failures issue no backend
// call. The first non-cancelled dispatch failure stops the remaining
// not-yet-started parts.
func (o *Orchestrator) Download(ctx context.Context, req Request) error {
	videoID, selected, err := o.validate(req)
	if err != nil {
		return err
	}
	// The banner tracks the current batch only; a leftover from a prior
	// failed batch must not survive into this one.
	o.banner.Clear()

	// Completed runs of the re-selected parts are cleared up front so a
	// redownload does not accumulate stale done records.
	for _, p := range selected {
		if old, ok := o.queue.FindCompletedForPart(p.Ordinal); ok {
			o.queue.Clear(old.DownloadID)
		}
	}

	parentID := fmt.Sprintf("%s-%d", videoID, o.now().UnixMilli())
	o.queue.Enqueue(queue.Item{DownloadID: parentID, Title: req.Title, Filename: req.Title})
	o.log.Info().Str("parentId", parentID).Int("parts", len(selected)).Msg("Dispatching batch")

	var failure error
	for _, p := range selected {
		if err := o.dispatchPart(ctx, videoID, parentID, p); err != nil {
			failure = err
			break
		}
	}
	o.finalizeParent(parentID, failure)
	return failure
}

// finalizeParent settles the synthetic batch record once the dispatch loop
// ends: cleared when no children remain, error on a fail-fast abort, done
// otherwise so the batch stops counting as active.
func (o *Orchestrator) finalizeParent(parentID string, failure error) {
	if len(o.queue.ChildrenOf(parentID)) == 0 {
		o.queue.Clear(parentID)
		return
	}
	if failure != nil {
		o.queue.SetError(parentID, failure.Error())
		return
	}
	o.queue.UpdateOnSuccess(parentID, "", "")
}

// dispatchPart enqueues the child record and awaits the backend call.
// Cancelled faults are absorbed (nil); everything else is surfaced via the
// item, the banner and the notifier.
func (o *Orchestrator) dispatchPart(ctx context.Context, videoID, parentID string, p media.Part) error {
	childID := queue.ChildID(parentID, p.Ordinal)
	o.queue.Enqueue(queue.Item{
		DownloadID: childID,
		ParentID:   parentID,
		Title:      p.Title,
		Filename:   p.Title,
	})
	outputPath, err := o.backend.Dispatch(ctx, backend.DispatchOptions{
		SourceID:        videoID,
		PartID:          p.Cid,
		OutputName:      p.Title,
		VideoQuality:    p.VideoQuality,
		AudioQuality:    p.AudioQuality,
		DownloadID:      childID,
		ParentID:        parentID,
		DurationSeconds: p.Duration,
		ThumbnailURL:    p.ThumbnailURL,
		Page:            p.Page,
	})
	if err != nil {
		fault := backend.Classify(err.Error())
		if fault.Cancelled() {
			o.log.Debug().Str("downloadId", childID).Msg("Part cancelled, continuing batch")
			return nil
		}
		msg := locale.Render(o.language, fault)
		o.queue.SetError(childID, msg)
		o.banner.Set(msg)
		o.notify(msg)
		o.log.Error().Str("downloadId", childID).Str("kind", string(fault.Kind)).Msg(msg)
		return errors.New(msg)
	}
	// The bridge's terminal event finalizes state too; either order
	// converges because the update is a key-scoped upsert.
	o.queue.UpdateOnSuccess(childID, outputPath, p.Title)
	return nil
}

func (o *Orchestrator) validate(req Request) (string, []media.Part, error) {
	videoID, err := media.ExtractVideoID(req.URL)
	if err != nil {
		return "", nil, fmt.Errorf("invalid source URL: %w", err)
	}
	selected := media.Video{Parts: req.Parts}.SelectedParts()
	if len(selected) == 0 {
		return "", nil, errors.New("no parts selected")
	}
	for _, p := range selected {
		if err := p.Validate(); err != nil {
			return "", nil, fmt.Errorf("part %d (%s): %w", p.Page, p.Title, err)
		}
	}
	if dupes := media.DuplicateTitleIndexes(req.Parts); len(dupes) > 0 {
		return "", nil, fmt.Errorf("duplicate output names at part indexes %v", dupes)
	}
	return videoID, selected, nil
}

// RequestCancel flags the item and notifies the backend. Refused while the
// observed stage is merge (the merge process cannot be interrupted) and
// reported back to the caller.
func (o *Orchestrator) RequestCancel(downloadID string) bool {
	stage := o.progress.LatestStage(downloadID)
	if !o.queue.RequestCancel(downloadID, stage) {
		return false
	}
	o.backend.Cancel(downloadID)
	return true
}

// Redownload re-runs a single part with its current title and quality
// values, independent of the rest of the batch. The part's previous done
// record, if any, is cleared first.
func (o *Orchestrator) Redownload(ctx context.Context, sourceURL string, videoTitle string, p media.Part) error {
	videoID, err := media.ExtractVideoID(sourceURL)
	if err != nil {
		return fmt.Errorf("invalid source URL: %w", err)
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("part %d (%s): %w", p.Page, p.Title, err)
	}
	o.banner.Clear()
	if old, ok := o.queue.FindCompletedForPart(p.Ordinal); ok {
		o.queue.Clear(old.DownloadID)
	}
	parentID := fmt.Sprintf("%s-%d", videoID, o.now().UnixMilli())
	o.queue.Enqueue(queue.Item{DownloadID: parentID, Title: videoTitle, Filename: videoTitle})
	failure := o.dispatchPart(ctx, videoID, parentID, p)
	o.finalizeParent(parentID, failure)
	return failure
}

// Reset clears the whole batch state: queue, progress, banner.
func (o *Orchestrator) Reset() {
	o.queue.ClearAll()
	o.progress.ClearAll()
	o.banner.Clear()
}
