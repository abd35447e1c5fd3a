package queue

import (
	"errors"
	"sync"
	"testing"

	"github.com/imyashkale/shutdownmanager/internal/models"
)

func TestTryEnqueue(t *testing.T) {
	q := NewEventQueue(2)

	if err := q.TryEnqueue(models.Event{Revision: 1}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.TryEnqueue(models.Event{Revision: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.TryEnqueue(models.Event{Revision: 3}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got %v", err)
	}
	if q.Len() != 2 {
		t.Fatalf("expected 2 buffered events, got %d", q.Len())
	}

	q.Close()
	q.Close()
	if err := q.TryEnqueue(models.Event{Revision: 4}); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
}

func TestNotifyNeverBlocks(t *testing.T) {
	q := NewEventQueue(1)
	for i := 0; i < 10; i++ {
		q.Notify(models.Event{Revision: uint64(i + 1)})
	}
	if q.Len() != 1 {
		t.Fatalf("expected 1 buffered event, got %d", q.Len())
	}
}

func TestWorkerPoolDrainsOnStop(t *testing.T) {
	q := NewEventQueue(10)
	pool := NewWorkerPool(q, 3)

	var (
		mu   sync.Mutex
		seen = make(map[uint64]bool)
	)
	pool.Start(func(e models.Event) error {
		mu.Lock()
		defer mu.Unlock()
		seen[e.Revision] = true
		if e.Revision == 2 {
			return errors.New("publish failed")
		}
		return nil
	})

	for i := 1; i <= 5; i++ {
		q.Notify(models.Event{Type: models.EventCreated, Entity: models.EntityServer, Revision: uint64(i)})
	}
	pool.Stop()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 5 {
		t.Fatalf("expected 5 delivered events, got %d", len(seen))
	}
}
