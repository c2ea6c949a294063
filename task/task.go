// Package task runs one-shot, self-disposing units of work (relay queries, timers, deferred
// renames, process termination) off the controller's loop and keeps track of the ones still in flight.
package task

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/relayplay/relayplay/log"
)

// DefaultLimit bounds a task that does not declare its own timeout.
const DefaultLimit = 15 * time.Second

var logger = log.For("task")

// Task is a unit of asynchronous work. Run executes on its own goroutine and the task is
// unregistered when Run returns, whatever the outcome. A task that wants to continue a
// logical operation spawns a follow-up before returning.
type Task interface {
	Name() string
	Run(ctx context.Context)
}

// Limited is implemented by tasks that know how long they may take.
type Limited interface {
	Limit() time.Duration
}

// ID identifies a spawned task inside its registry.
type ID uint64

// Registry is the bookkeeping of in-flight tasks. The zero value is not usable; see NewRegistry.
type Registry struct {
	mu   sync.Mutex
	next ID
	live map[ID]string
	idle chan struct{} // closed while live is empty
	base context.Context
}

// NewRegistry returns an empty registry. Task contexts derive from base.
func NewRegistry(base context.Context) *Registry {
	idle := make(chan struct{})
	close(idle)

	return &Registry{
		live: make(map[ID]string),
		idle: idle,
		base: base,
	}
}

// Spawn registers t and starts it. It never blocks on the task's work.
func (r *Registry) Spawn(t Task) ID {
	id := r.register(t.Name())

	limit := DefaultLimit
	if l, ok := t.(Limited); ok && l.Limit() > 0 {
		limit = l.Limit()
	}

	go func() {
		defer r.unregister(id)

		ctx, cancel := context.WithTimeout(r.base, limit)
		defer cancel()

		t.Run(ctx)
	}()

	return id
}

// Len reports how many tasks are registered.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.live)
}

// Drain blocks until every registered task has finished or bound elapses.
// It reports whether the registry ended up empty.
func (r *Registry) Drain(bound time.Duration) bool {
	deadline := time.NewTimer(bound)
	defer deadline.Stop()

	for {
		r.mu.Lock()
		idle := r.idle
		n := len(r.live)
		r.mu.Unlock()

		if n == 0 {
			return true
		}

		logger.Debugf("draining %d task(s)", n)

		select {
		case <-idle:
			// a task spawned between the close and our re-check re-arms idle; loop again
		case <-deadline.C:
			logger.Warnf("drain gave up with %d task(s) in flight", r.Len())
			return false
		}
	}
}

func (r *Registry) register(name string) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	id := r.next

	if len(r.live) == 0 {
		r.idle = make(chan struct{})
	}
	r.live[id] = name

	logger.Tracef("spawned %s #%d", name, id)
	return id
}

func (r *Registry) unregister(id ID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, ok := r.live[id]
	if !ok {
		panic(fmt.Sprintf("task #%d finished twice", id))
	}
	delete(r.live, id)

	logger.Tracef("finished %s #%d", name, id)

	if len(r.live) == 0 {
		close(r.idle)
	}
}
