package progress

import (
	"sync"
)

const (
	StageVideo    = "video"
	StageAudio    = "audio"
	StageMerge    = "merge"
	StageComplete = "complete"

	// Non-fatal warnings: the backend substituted a lower quality than
	// requested.
	StageWarnVideoQuality = "warn-video-quality-fallback"
	StageWarnAudioQuality = "warn-audio-quality-fallback"
)

// Entry is one progress observation for a (download, stage) pair. A new
// event for the same pair replaces the prior one.
type Entry struct {
	DownloadID   string
	ParentID     string
	InternalID   string
	Stage        string
	Title        string
	OutputPath   string
	Filesize     int64
	Downloaded   int64
	TransferRate int64 // bytes per second
	Percentage   float64
	ElapsedTime  float64 // seconds
	IsComplete   bool
	Cancelled    bool // cancel acknowledgment from the backend
}

type entryKey struct {
	downloadID string
	stage      string
}

// Stage weights used when the backend does not report byte-accurate
// totals. A coarse deterministic weighting keeps the aggregate indicator
// moving; exact ratios are always preferred when filesize is known.
var stageWeights = map[string]float64{
	StageVideo: 0.33,
	StageAudio: 0.33,
	StageMerge: 0.34,
}

type Store struct {
	mu        sync.RWMutex
	entries   map[entryKey]Entry
	lastStage map[string]string
	lastEntry map[string]Entry
	children  map[string][]string // parentID -> child download ids, first-seen order
}

func NewStore() *Store {
	return &Store{
		entries:   make(map[entryKey]Entry),
		lastStage: make(map[string]string),
		lastEntry: make(map[string]Entry),
		children:  make(map[string][]string),
	}
}

// Ingest upserts the entry under its (downloadId, stage) key. A completed
// observation is never regressed by a later non-complete one for the same
// key; identical redelivery is a no-op by construction.
func (s *Store) Ingest(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := entryKey{downloadID: e.DownloadID, stage: e.Stage}
	if prior, exists := s.entries[key]; exists && prior.IsComplete && !e.IsComplete {
		return
	}
	if _, seen := s.lastEntry[e.DownloadID]; !seen && e.ParentID != "" {
		s.children[e.ParentID] = append(s.children[e.ParentID], e.DownloadID)
	}
	s.entries[key] = e
	s.lastStage[e.DownloadID] = e.Stage
	s.lastEntry[e.DownloadID] = e
}

// EntriesFor returns every stage observation for the id.
func (s *Store) EntriesFor(downloadID string) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for key, e := range s.entries {
		if key.downloadID == downloadID {
			out = append(out, e)
		}
	}
	return out
}

// LatestStage returns the stage of the most recent observation for the id,
// or "" when nothing has been seen.
func (s *Store) LatestStage(downloadID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastStage[downloadID]
}

// AggregateParent averages per-child completion ratios in [0,1]. A child
// ratio is the byte-exact downloaded/filesize per stage when filesize is
// reported, and the fixed stage weight for observed stages otherwise.
func (s *Store) AggregateParent(parentID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.children[parentID]
	if len(ids) == 0 {
		return 0
	}
	total := 0.0
	for _, id := range ids {
		total += s.childRatio(id)
	}
	return clamp01(total / float64(len(ids)))
}

func (s *Store) childRatio(downloadID string) float64 {
	// Every stage ends with an isComplete sample; only the terminal
	// complete stage means the whole child is done.
	if last, ok := s.lastEntry[downloadID]; ok && last.IsComplete && last.Stage == StageComplete {
		return 1
	}
	ratio := 0.0
	for stage, weight := range stageWeights {
		e, exists := s.entries[entryKey{downloadID: downloadID, stage: stage}]
		if !exists {
			continue
		}
		switch {
		case e.IsComplete:
			ratio += weight
		case e.Filesize > 0:
			ratio += weight * clamp01(float64(e.Downloaded)/float64(e.Filesize))
		default:
			ratio += weight
		}
	}
	return clamp01(ratio)
}

func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[entryKey]Entry)
	s.lastStage = make(map[string]string)
	s.lastEntry = make(map[string]Entry)
	s.children = make(map[string][]string)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
