package queue

import (
	"sync"

	"github.com/imyashkale/shutdownmanager/internal/logger"
	"github.com/imyashkale/shutdownmanager/internal/models"
)

// EventQueue buffers committed mutation events for asynchronous delivery
type EventQueue struct {
	events chan models.Event
	mu     sync.RWMutex
	closed bool
}

// NewEventQueue creates a new event queue with the specified buffer size
func NewEventQueue(bufferSize int) *EventQueue {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &EventQueue{
		events: make(chan models.Event, bufferSize),
	}
}

// TryEnqueue adds an event without blocking. It fails with ErrQueueFull when
// the buffer is full and ErrQueueClosed after Close.
func (q *EventQueue) TryEnqueue(event models.Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.events <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Notify implements store.Notifier. Events that cannot be queued are dropped.
func (q *EventQueue) Notify(event models.Event) {
	if err := q.TryEnqueue(event); err != nil {
		logger.WithFields(map[string]interface{}{
			"subject":  event.Subject(),
			"id":       event.Id,
			"revision": event.Revision,
			"error":    err.Error(),
		}).Warn("Dropping mutation event")
	}
}

// Events returns the underlying channel for event consumption
func (q *EventQueue) Events() <-chan models.Event {
	return q.events
}

// Len returns the number of buffered events
func (q *EventQueue) Len() int {
	return len(q.events)
}

// Close stops accepting events. Buffered events are still delivered.
func (q *EventQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.events)
}

// Handler delivers one event
type Handler func(models.Event) error

// WorkerPool drains an EventQueue with a fixed number of workers
type WorkerPool struct {
	queue   *EventQueue
	workers int
	wg      sync.WaitGroup
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(queue *EventQueue, numWorkers int) *WorkerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool{
		queue:   queue,
		workers: numWorkers,
	}
}

// Start starts all workers
func (wp *WorkerPool) Start(handler Handler) {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i, handler)
	}
}

// worker delivers events until the queue is closed and drained
func (wp *WorkerPool) worker(n int, handler Handler) {
	defer wp.wg.Done()

	for event := range wp.queue.events {
		if err := handler(event); err != nil {
			logger.WithFields(map[string]interface{}{
				"worker":   n,
				"subject":  event.Subject(),
				"id":       event.Id,
				"revision": event.Revision,
				"error":    err.Error(),
			}).Error("Failed to deliver mutation event")
			continue
		}
		logger.WithFields(map[string]interface{}{
			"worker":   n,
			"subject":  event.Subject(),
			"revision": event.Revision,
		}).Debug("Mutation event delivered")
	}
	logger.Debug("Worker exiting: event channel closed")
}

// Stop closes the queue and waits for the workers to drain it
func (wp *WorkerPool) Stop() {
	wp.queue.Close()
	wp.wg.Wait()
}
