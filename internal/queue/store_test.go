package queue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnqueueIsIdempotent(t *testing.T) {
	s := NewStore()
	s.Enqueue(Item{DownloadID: "BV1-100-p1", ParentID: "BV1-100", Title: "Intro"})
	s.Enqueue(Item{DownloadID: "BV1-100-p1", ParentID: "BV1-100", Title: "Other"})

	item, ok := s.Get("BV1-100-p1")
	require.True(t, ok)
	require.Equal(t, "Intro", item.Title)
	require.Equal(t, StatusPending, item.Status)
	require.NotEmpty(t, item.InternalID)
	require.Len(t, s.Items(), 1)
}

func TestMarkObservedOnlyMovesPendingToRunning(t *testing.T) {
	s := NewStore()
	s.Enqueue(Item{DownloadID: "d1"})

	s.MarkObserved("d1")
	item, _ := s.Get("d1")
	require.Equal(t, StatusRunning, item.Status)

	// Repeated observation is a no-op.
	s.MarkObserved("d1")
	item, _ = s.Get("d1")
	require.Equal(t, StatusRunning, item.Status)

	s.UpdateOnSuccess("d1", "/tmp/out.mp4", "Intro")
	s.MarkObserved("d1")
	item, _ = s.Get("d1")
	require.Equal(t, StatusDone, item.Status)
	require.Equal(t, "/tmp/out.mp4", item.OutputPath)

	// Unknown ids are ignored.
	s.MarkObserved("missing")
}

func TestRequestCancelRefusedDuringMerge(t *testing.T) {
	s := NewStore()
	s.Enqueue(Item{DownloadID: "d1"})
	s.MarkObserved("d1")

	require.False(t, s.RequestCancel("d1", "merge"))
	item, _ := s.Get("d1")
	require.Equal(t, StatusRunning, item.Status)

	require.True(t, s.RequestCancel("d1", "video"))
	item, _ = s.Get("d1")
	require.Equal(t, StatusCancelling, item.Status)

	s.ConfirmCancelled("d1")
	item, _ = s.Get("d1")
	require.Equal(t, StatusCancelled, item.Status)
}

func TestRequestCancelRefusedForInactiveItem(t *testing.T) {
	s := NewStore()
	s.Enqueue(Item{DownloadID: "d1"})
	s.UpdateOnSuccess("d1", "/tmp/out.mp4", "")
	require.False(t, s.RequestCancel("d1", "video"))
}

func TestFindCompletedForPart(t *testing.T) {
	s := NewStore()
	s.Enqueue(Item{DownloadID: "BV1-100-p1", ParentID: "BV1-100"})
	s.Enqueue(Item{DownloadID: "BV1-100-p11", ParentID: "BV1-100"})
	s.UpdateOnSuccess("BV1-100-p11", "/tmp/p11.mp4", "")

	_, ok := s.FindCompletedForPart(1)
	require.False(t, ok, "p1 is not done and p11 must not match the p1 suffix")

	item, ok := s.FindCompletedForPart(11)
	require.True(t, ok)
	require.Equal(t, "BV1-100-p11", item.DownloadID)
}

func TestHasActive(t *testing.T) {
	s := NewStore()
	require.False(t, s.HasActive())

	s.Enqueue(Item{DownloadID: "d1"})
	require.True(t, s.HasActive())

	s.SetError("d1", "boom")
	require.False(t, s.HasActive())

	s.Enqueue(Item{DownloadID: "d2"})
	s.MarkObserved("d2")
	require.True(t, s.RequestCancel("d2", "audio"))
	require.True(t, s.HasActive(), "cancelling still counts as active")

	s.ConfirmCancelled("d2")
	require.False(t, s.HasActive())
}

func TestClearAndChildren(t *testing.T) {
	s := NewStore()
	s.Enqueue(Item{DownloadID: "BV1-100", Title: "Video"})
	s.Enqueue(Item{DownloadID: "BV1-100-p1", ParentID: "BV1-100"})
	s.Enqueue(Item{DownloadID: "BV1-100-p2", ParentID: "BV1-100"})

	require.Len(t, s.ChildrenOf("BV1-100"), 2)

	s.Clear("BV1-100-p1")
	children := s.ChildrenOf("BV1-100")
	require.Len(t, children, 1)
	require.Equal(t, "BV1-100-p2", children[0].DownloadID)

	s.Clear("missing") // no-op
	s.ClearAll()
	require.Empty(t, s.Items())
}
