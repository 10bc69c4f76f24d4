package progress

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIngestRedeliveryIsNoop(t *testing.T) {
	s := NewStore()
	e := Entry{DownloadID: "d1", ParentID: "b1", Stage: StageVideo,
		Filesize: 100, Downloaded: 50, Percentage: 50}
	s.Ingest(e)
	before := s.AggregateParent("b1")
	s.Ingest(e)
	require.Equal(t, before, s.AggregateParent("b1"))
	require.Len(t, s.EntriesFor("d1"), 1)
}

func TestIngestNeverRegressesCompletedStage(t *testing.T) {
	s := NewStore()
	s.Ingest(Entry{DownloadID: "d1", ParentID: "b1", Stage: StageVideo,
		Percentage: 100, IsComplete: true})
	// A stale, out-of-order partial update for the same key arrives late.
	s.Ingest(Entry{DownloadID: "d1", ParentID: "b1", Stage: StageVideo,
		Filesize: 100, Downloaded: 10, Percentage: 10})

	entries := s.EntriesFor("d1")
	require.Len(t, entries, 1)
	require.True(t, entries[0].IsComplete)
	require.Equal(t, float64(100), entries[0].Percentage)
}

func TestLatestStage(t *testing.T) {
	s := NewStore()
	require.Equal(t, "", s.LatestStage("d1"))
	s.Ingest(Entry{DownloadID: "d1", Stage: StageVideo})
	s.Ingest(Entry{DownloadID: "d1", Stage: StageMerge})
	require.Equal(t, StageMerge, s.LatestStage("d1"))
}

func TestAggregateParentEmpty(t *testing.T) {
	s := NewStore()
	require.Equal(t, 0.0, s.AggregateParent("b1"))
}

func TestAggregateParentExactRatios(t *testing.T) {
	s := NewStore()
	s.Ingest(Entry{DownloadID: "d1", ParentID: "b1", Stage: StageVideo,
		Filesize: 100, Downloaded: 100, IsComplete: true})
	s.Ingest(Entry{DownloadID: "d1", ParentID: "b1", Stage: StageAudio,
		Filesize: 100, Downloaded: 50})
	// d1: 0.33 + 0.33*0.5 = 0.495
	require.InDelta(t, 0.495, s.AggregateParent("b1"), 1e-9)
}

func TestAggregateParentWeightedFallback(t *testing.T) {
	s := NewStore()
	// merge stage reports no byte totals; it contributes its fixed weight.
	s.Ingest(Entry{DownloadID: "d1", ParentID: "b1", Stage: StageVideo, IsComplete: true})
	s.Ingest(Entry{DownloadID: "d1", ParentID: "b1", Stage: StageAudio, IsComplete: true})
	s.Ingest(Entry{DownloadID: "d1", ParentID: "b1", Stage: StageMerge})
	require.InDelta(t, 1.0, s.AggregateParent("b1"), 1e-9)
}

func TestAggregateParentVideoStageCompleteIsPartial(t *testing.T) {
	s := NewStore()
	// The final sample of each stage carries isComplete; a finished video
	// stream alone contributes only its stage weight.
	s.Ingest(Entry{DownloadID: "d1", ParentID: "b1", Stage: StageVideo,
		Filesize: 100, Downloaded: 100, Percentage: 100, IsComplete: true})
	require.InDelta(t, 0.33, s.AggregateParent("b1"), 1e-9)
}

func TestAggregateParentMonotonicAcrossStages(t *testing.T) {
	s := NewStore()
	s.Ingest(Entry{DownloadID: "d1", ParentID: "b1", Stage: StageVideo,
		Filesize: 100, Downloaded: 100, Percentage: 100, IsComplete: true})
	afterVideo := s.AggregateParent("b1")

	s.Ingest(Entry{DownloadID: "d1", ParentID: "b1", Stage: StageAudio,
		Filesize: 100, Downloaded: 10, Percentage: 10})
	afterAudioSample := s.AggregateParent("b1")
	require.Greater(t, afterAudioSample, afterVideo)

	s.Ingest(Entry{DownloadID: "d1", ParentID: "b1", Stage: StageComplete,
		Percentage: 100, IsComplete: true})
	require.Equal(t, 1.0, s.AggregateParent("b1"))
}

func TestAggregateParentAllChildrenComplete(t *testing.T) {
	s := NewStore()
	s.Ingest(Entry{DownloadID: "d1", ParentID: "b1", Stage: StageComplete, IsComplete: true})
	s.Ingest(Entry{DownloadID: "d2", ParentID: "b1", Stage: StageComplete, IsComplete: true})
	require.Equal(t, 1.0, s.AggregateParent("b1"))
}

func TestAggregateParentAveragesAcrossChildren(t *testing.T) {
	s := NewStore()
	s.Ingest(Entry{DownloadID: "d1", ParentID: "b1", Stage: StageComplete, IsComplete: true})
	s.Ingest(Entry{DownloadID: "d2", ParentID: "b1", Stage: StageVideo,
		Filesize: 200, Downloaded: 0})
	// (1.0 + 0.0) / 2
	require.InDelta(t, 0.5, s.AggregateParent("b1"), 1e-9)
}

func TestClearAll(t *testing.T) {
	s := NewStore()
	s.Ingest(Entry{DownloadID: "d1", ParentID: "b1", Stage: StageVideo})
	s.ClearAll()
	require.Empty(t, s.EntriesFor("d1"))
	require.Equal(t, 0.0, s.AggregateParent("b1"))
}
