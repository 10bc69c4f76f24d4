package queue

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusRunning    Status = "running"
	StatusDone       Status = "done"
	StatusError      Status = "error"
	StatusCancelling Status = "cancelling"
	StatusCancelled  Status = "cancelled"
)

// Active reports whether the status still occupies the queue: waiting,
// in flight, or awaiting a cancel acknowledgment.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusRunning || s == StatusCancelling
}

// Item is one dispatched operation: either a per-part child or the
// synthetic per-batch parent (ParentID empty).
type Item struct {
	DownloadID   string
	ParentID     string
	InternalID   string // stable UI key
	Title        string
	Filename     string
	OutputPath   string
	Status       Status
	ErrorMessage string
	EnqueuedAt   time.Time
}

// Store holds one record per dispatched operation. Every operation is
// total: a missing id is a no-op, never an error.
type Store struct {
	mu    sync.RWMutex
	items map[string]*Item
	order []string
}

func NewStore() *Store {
	return &Store{items: make(map[string]*Item)}
}

// ChildID derives the deterministic child download id for a part ordinal.
func ChildID(parentID string, ordinal int) string {
	return fmt.Sprintf("%s-p%d", parentID, ordinal)
}

// Enqueue inserts a new item with status pending. Re-enqueueing an
// existing id is a no-op.
func (s *Store) Enqueue(item Item) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[item.DownloadID]; exists {
		return
	}
	item.Status = StatusPending
	if item.InternalID == "" {
		item.InternalID = uuid.New().String()
	}
	if item.EnqueuedAt.IsZero() {
		item.EnqueuedAt = time.Now()
	}
	s.items[item.DownloadID] = &item
	s.order = append(s.order, item.DownloadID)
}

// MarkObserved records that the backend has started work on the item.
// Idempotent; only the pending item transitions to running.
func (s *Store) MarkObserved(downloadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, exists := s.items[downloadID]; exists && item.Status == StatusPending {
		item.Status = StatusRunning
	}
}

func (s *Store) UpdateOnSuccess(downloadID, outputPath, title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, exists := s.items[downloadID]; exists {
		item.Status = StatusDone
		item.OutputPath = outputPath
		if title != "" {
			item.Filename = title
		}
	}
}

func (s *Store) SetError(downloadID, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, exists := s.items[downloadID]; exists {
		item.Status = StatusError
		item.ErrorMessage = message
	}
}

// RequestCancel flags the item as cancelling and reports whether the
// request was accepted. The merge stage is an external non-interruptible
// process, so a cancel during merge is refused.
func (s *Store) RequestCancel(downloadID, activeStage string) bool {
	if activeStage == "merge" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	item, exists := s.items[downloadID]
	if !exists || !item.Status.Active() {
		return false
	}
	item.Status = StatusCancelling
	return true
}

func (s *Store) ConfirmCancelled(downloadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item, exists := s.items[downloadID]; exists {
		item.Status = StatusCancelled
	}
}

func (s *Store) Clear(downloadID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[downloadID]; !exists {
		return
	}
	delete(s.items, downloadID)
	for i, id := range s.order {
		if id == downloadID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*Item)
	s.order = nil
}

// FindCompletedForPart returns the done item whose id encodes the given
// part ordinal, if any.
func (s *Store) FindCompletedForPart(ordinal int) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	suffix := fmt.Sprintf("-p%d", ordinal)
	for _, id := range s.order {
		item := s.items[id]
		if item.Status == StatusDone && strings.HasSuffix(id, suffix) {
			return *item, true
		}
	}
	return Item{}, false
}

func (s *Store) HasActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.Status.Active() {
			return true
		}
	}
	return false
}

func (s *Store) Get(downloadID string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if item, exists := s.items[downloadID]; exists {
		return *item, true
	}
	return Item{}, false
}

// ChildrenOf returns the items referencing parentID, in enqueue order.
func (s *Store) ChildrenOf(parentID string) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Item
	for _, id := range s.order {
		if item := s.items[id]; item.ParentID == parentID {
			out = append(out, *item)
		}
	}
	return out
}

// Items returns every record in enqueue order, for display.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *s.items[id])
	}
	return out
}
