// Package store implements the tenant-scoped resource stores. Each store
// mirrors one remote collection (services, staff, appointments), rebuilt
// from scratch whenever the active salon changes.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/RS-Eagle/krema-admin-go/internal/api"
)

var (
	// ErrInvalidTimeRange is raised locally when an appointment's start is
	// not strictly before its end. No request is made.
	ErrInvalidTimeRange = errors.New("start_at must be before end_at")

	// ErrInvalidStatus is raised locally for an unknown appointment status.
	ErrInvalidStatus = errors.New("invalid appointment status")
)

// StatusFilter selects items by their active flag.
type StatusFilter string

const (
	FilterAll      StatusFilter = "all"
	FilterActive   StatusFilter = "active"
	FilterInactive StatusFilter = "inactive"
)

// SalonSignal is the active-salon feed a store observes. The session store
// implements it.
type SalonSignal interface {
	Watch() (<-chan int64, func())
}

// collection is the shared core of the three resource stores: a fenced,
// cancellable mirror of one remote collection.
//
// Every fetch runs under a generation number taken when it starts. Responses
// whose generation is no longer current are dropped, so a late reply for
// salon N can never overwrite state after a switch to salon N+1. Mutations
// are fenced the same way.
type collection[T any] struct {
	client *api.Client
	log    *slog.Logger
	name   string
	path   string

	idOf     func(T) int64
	nameOf   func(T) string
	activeOf func(T) bool
	fetchFn  func(ctx context.Context, salonID int64) ([]T, error)

	mu      sync.Mutex
	items   []T
	salonID int64
	gen     uint64
	cancel  context.CancelFunc
	loading bool
	lastErr error

	stopWatch func()
	done      chan struct{}
	wg        sync.WaitGroup
}

func (c *collection[T]) init(signal SalonSignal) {
	c.done = make(chan struct{})
	ch, stop := signal.Watch()
	c.stopWatch = stop
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.done:
				return
			case id := <-ch:
				c.setSalon(id)
			}
		}
	}()
}

// Close detaches the store from the salon signal and cancels any in-flight
// fetch. The store keeps serving reads but no longer reacts or fetches.
func (c *collection[T]) Close() {
	c.stopWatch()
	close(c.done)
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

// setSalon discards the collection and, when a salon is present, starts a
// fenced background fetch for it. The previous fetch is cancelled first.
func (c *collection[T]) setSalon(id int64) {
	c.mu.Lock()
	if id == c.salonID {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.salonID = id
	c.items = nil
	c.lastErr = nil
	if id == 0 {
		c.loading = false
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.loading = true
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		items, err := c.fetchFn(ctx, id)
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.gen {
			return
		}
		c.loading = false
		if err != nil {
			c.lastErr = err
			c.log.Warn("fetch failed", "store", c.name, "salon_id", id, "error", err)
			return
		}
		c.items = items
	}()
}

// defaultFetch lists the full collection for a salon.
func (c *collection[T]) defaultFetch(ctx context.Context, salonID int64) ([]T, error) {
	body, err := c.client.Do(ctx, api.Request{
		Method:  http.MethodGet,
		Path:    c.path,
		SalonID: salonID,
	})
	if err != nil {
		return nil, err
	}
	coll, err := api.DecodeCollection[T](body)
	if err != nil {
		return nil, err
	}
	return coll.Items, nil
}

// Refresh re-fetches the current salon's collection synchronously. The
// result is installed only if no switch happened in the meantime.
func (c *collection[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	id, gen := c.salonID, c.gen
	c.mu.Unlock()
	if id == 0 {
		return api.ErrNotScoped
	}
	items, err := c.fetchFn(ctx, id)
	if err != nil {
		return err
	}
	c.install(gen, items)
	return nil
}

func (c *collection[T]) install(gen uint64, items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.items = items
	c.loading = false
	c.lastErr = nil
}

// scope returns the active salon and the current generation, or ErrNotScoped
// before any network call when no salon is selected.
func (c *collection[T]) scope() (int64, uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.salonID == 0 {
		return 0, 0, api.ErrNotScoped
	}
	return c.salonID, c.gen, nil
}

// mutateIf applies fn to the collection unless the generation moved on.
func (c *collection[T]) mutateIf(gen uint64, fn func([]T) []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.items = fn(c.items)
	return true
}

// create posts the payload and prepends the server's canonical object. The
// server response is authoritative, not the submitted payload.
func (c *collection[T]) create(ctx context.Context, payload any) (T, error) {
	var zero T
	salonID, gen, err := c.scope()
	if err != nil {
		return zero, err
	}
	body, err := c.client.Do(ctx, api.Request{
		Method:  http.MethodPost,
		Path:    c.path,
		Body:    payload,
		SalonID: salonID,
	})
	if err != nil {
		return zero, err
	}
	item, err := api.DecodeEntity[T](body)
	if err != nil {
		return zero, err
	}
	c.mutateIf(gen, func(items []T) []T {
		return append([]T{item}, items...)
	})
	return item, nil
}

// update patches the item remotely. When the server returns the full entity
// it wins; otherwise the submitted fields are merged optimistically via
// merge.
func (c *collection[T]) update(ctx context.Context, id int64, payload any, merge func(T) T) (T, error) {
	var zero T
	salonID, gen, err := c.scope()
	if err != nil {
		return zero, err
	}
	body, err := c.client.Do(ctx, api.Request{
		Method:  http.MethodPatch,
		Path:    fmt.Sprintf("%s/%d", c.path, id),
		Body:    payload,
		SalonID: salonID,
	})
	if err != nil {
		return zero, err
	}

	if item, derr := api.DecodeEntity[T](body); derr == nil && c.idOf(item) == id {
		c.replace(gen, id, item)
		return item, nil
	}

	var updated T
	c.mutateIf(gen, func(items []T) []T {
		for i := range items {
			if c.idOf(items[i]) == id {
				items[i] = merge(items[i])
				updated = items[i]
			}
		}
		return items
	})
	return updated, nil
}

func (c *collection[T]) replace(gen uint64, id int64, item T) {
	c.mutateIf(gen, func(items []T) []T {
		for i := range items {
			if c.idOf(items[i]) == id {
				items[i] = item
			}
		}
		return items
	})
}

// remove deletes the item remotely and drops it locally only after the
// server confirmed.
func (c *collection[T]) remove(ctx context.Context, id int64) error {
	salonID, gen, err := c.scope()
	if err != nil {
		return err
	}
	if _, err := c.client.Do(ctx, api.Request{
		Method:  http.MethodDelete,
		Path:    fmt.Sprintf("%s/%d", c.path, id),
		SalonID: salonID,
	}); err != nil {
		return err
	}
	c.mutateIf(gen, func(items []T) []T {
		kept := items[:0]
		for _, item := range items {
			if c.idOf(item) != id {
				kept = append(kept, item)
			}
		}
		return kept
	})
	return nil
}

// Items returns a snapshot of the collection.
func (c *collection[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Filtered projects the collection through a status filter and a
// case-insensitive substring search over the name field. Pure read,
// recomputed on every call.
func (c *collection[T]) Filtered(status StatusFilter, query string) []T {
	query = strings.ToLower(query)
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []T
	for _, item := range c.items {
		if query != "" && !strings.Contains(strings.ToLower(c.nameOf(item)), query) {
			continue
		}
		if c.activeOf != nil {
			if status == FilterActive && !c.activeOf(item) {
				continue
			}
			if status == FilterInactive && c.activeOf(item) {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

// Loading reports whether a reactive fetch is in flight.
func (c *collection[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err returns the last reactive fetch error, cleared on the next successful
// fetch or salon switch.
func (c *collection[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// SalonID returns the salon the collection is currently scoped to.
func (c *collection[T]) SalonID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.salonID
}
