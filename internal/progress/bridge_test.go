package progress

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/j4rviscmd/bilibili-downloader-gui-sub000/internal/queue"
)

func newBridgeFixture() (*Bridge, *Store, *queue.Store) {
	ps := NewStore()
	qs := queue.NewStore()
	return NewBridge(ps, qs), ps, qs
}

func TestBridgeFirstEventMovesPendingToRunning(t *testing.T) {
	b, _, qs := newBridgeFixture()
	qs.Enqueue(queue.Item{DownloadID: "b1-p1", ParentID: "b1"})

	b.Handle(Entry{DownloadID: "b1-p1", ParentID: "b1", Stage: StageVideo, Percentage: 1})

	item, _ := qs.Get("b1-p1")
	require.Equal(t, queue.StatusRunning, item.Status)
}

func TestBridgeDuplicateDeliveryLeavesStateUnchanged(t *testing.T) {
	b, ps, qs := newBridgeFixture()
	qs.Enqueue(queue.Item{DownloadID: "b1-p1", ParentID: "b1"})
	e := Entry{DownloadID: "b1-p1", ParentID: "b1", Stage: StageVideo,
		Filesize: 10, Downloaded: 5, Percentage: 50}

	b.Handle(e)
	aggregate := ps.AggregateParent("b1")
	item, _ := qs.Get("b1-p1")

	b.Handle(e)
	require.Equal(t, aggregate, ps.AggregateParent("b1"))
	again, _ := qs.Get("b1-p1")
	require.Equal(t, item, again)
}

func TestBridgeCompleteEventFinalizesItem(t *testing.T) {
	b, _, qs := newBridgeFixture()
	qs.Enqueue(queue.Item{DownloadID: "b1-p1", ParentID: "b1"})

	b.Handle(Entry{DownloadID: "b1-p1", ParentID: "b1", Stage: StageComplete,
		Percentage: 100, IsComplete: true, OutputPath: "/tmp/op.mp4", Title: "OP"})

	item, _ := qs.Get("b1-p1")
	require.Equal(t, queue.StatusDone, item.Status)
	require.Equal(t, "/tmp/op.mp4", item.OutputPath)
	require.Equal(t, "OP", item.Filename)
}

func TestBridgeCompleteBeforeDispatchResolution(t *testing.T) {
	// A terminal event may arrive before the item is running; the end
	// state must match the normal order.
	b, _, qs := newBridgeFixture()
	qs.Enqueue(queue.Item{DownloadID: "b1-p1", ParentID: "b1"})

	b.Handle(Entry{DownloadID: "b1-p1", ParentID: "b1", Stage: StageComplete,
		IsComplete: true, OutputPath: "/tmp/op.mp4"})
	b.Handle(Entry{DownloadID: "b1-p1", ParentID: "b1", Stage: StageVideo, Percentage: 40})

	item, _ := qs.Get("b1-p1")
	require.Equal(t, queue.StatusDone, item.Status)
}

func TestBridgeCancelAcknowledgment(t *testing.T) {
	b, ps, qs := newBridgeFixture()
	qs.Enqueue(queue.Item{DownloadID: "b1-p1", ParentID: "b1"})
	qs.MarkObserved("b1-p1")
	require.True(t, qs.RequestCancel("b1-p1", StageVideo))

	b.Handle(Entry{DownloadID: "b1-p1", Cancelled: true})

	item, _ := qs.Get("b1-p1")
	require.Equal(t, queue.StatusCancelled, item.Status)
	// An ack carries no progress payload.
	require.Empty(t, ps.EntriesFor("b1-p1"))
}

func TestBridgeEventForUnknownIdIsTolerated(t *testing.T) {
	b, ps, _ := newBridgeFixture()
	b.Handle(Entry{DownloadID: "ghost", ParentID: "b1", Stage: StageVideo})
	require.Len(t, ps.EntriesFor("ghost"), 1)
}
