package preheat

import (
	"context"
	"image"
	"sync"

	"fyne.io/fyne/v2"

	"github.com/alexballas/xmediagrid/assets"
)

// ImageDecoder produces a thumbnail for an asset. A nil image or an error
// both mean "no image".
type ImageDecoder interface {
	Decode(ctx context.Context, id assets.ID, size fyne.Size) (image.Image, error)
}

// Dispatcher runs fn on the context that owns UI state.
type Dispatcher func(fn func())

// Generation identifies one request for a position. Later requests always
// carry larger generations.
type Generation uint64

type FetchState int

const (
	FetchIdle FetchState = iota
	FetchFetching
	FetchDelivered
	FetchCancelled
)

func (s FetchState) String() string {
	switch s {
	case FetchFetching:
		return "fetching"
	case FetchDelivered:
		return "delivered"
	case FetchCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

type fetchSlot struct {
	gen    Generation
	state  FetchState
	cancel context.CancelFunc
}

// FetchCoordinator runs at most one live thumbnail fetch per position.
//
// A new Request for a position supersedes the previous one; Cancel makes the
// current one non-deliverable. Superseded and cancelled decodes are asked to
// stop but may still finish; their results are dropped on the dispatch
// context, so the ready callback only ever sees the latest live generation.
type FetchCoordinator struct {
	decoder  ImageDecoder
	lookup   func(pos int) (assets.ID, bool)
	onReady  func(pos int, img image.Image)
	dispatch Dispatcher

	mu    sync.Mutex
	last  Generation
	slots map[int]*fetchSlot
	wg    sync.WaitGroup
}

type FetchOption func(*FetchCoordinator)

// WithDispatcher replaces fyne.Do as the delivery context.
func WithDispatcher(d Dispatcher) FetchOption {
	return func(c *FetchCoordinator) {
		c.dispatch = d
	}
}

// NewFetchCoordinator decodes through decoder, resolving positions with
// lookup, and reports results to onReady on the UI goroutine.
func NewFetchCoordinator(decoder ImageDecoder, lookup func(pos int) (assets.ID, bool), onReady func(pos int, img image.Image), opts ...FetchOption) *FetchCoordinator {
	c := &FetchCoordinator{
		decoder:  decoder,
		lookup:   lookup,
		onReady:  onReady,
		dispatch: fyne.Do,
		slots:    make(map[int]*fetchSlot),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request starts a fetch for pos at size and returns its generation.
func (c *FetchCoordinator) Request(pos int, size fyne.Size) Generation {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	slot, ok := c.slots[pos]
	if !ok {
		slot = &fetchSlot{}
		c.slots[pos] = slot
	}
	if slot.cancel != nil {
		slot.cancel()
	}
	c.last++
	gen := c.last
	slot.gen, slot.state, slot.cancel = gen, FetchFetching, cancel
	c.mu.Unlock()

	id, found := c.lookup(pos)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		var img image.Image
		if found {
			if res, err := c.decoder.Decode(ctx, id, size); err == nil {
				img = res
			}
		}
		c.dispatch(func() {
			c.deliver(pos, gen, img)
		})
	}()
	return gen
}

func (c *FetchCoordinator) deliver(pos int, gen Generation, img image.Image) {
	c.mu.Lock()
	slot, ok := c.slots[pos]
	if !ok || slot.gen != gen || slot.state != FetchFetching {
		c.mu.Unlock()
		return
	}
	slot.state = FetchDelivered
	slot.cancel = nil
	c.mu.Unlock()

	if c.onReady != nil {
		c.onReady(pos, img)
	}
}

// Cancel stops delivery of the current fetch for pos, if one is running.
func (c *FetchCoordinator) Cancel(pos int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.slots[pos]
	if !ok || slot.state != FetchFetching {
		return
	}
	slot.state = FetchCancelled
	if slot.cancel != nil {
		slot.cancel()
		slot.cancel = nil
	}
}

// CancelAll cancels every running fetch and forgets all positions.
func (c *FetchCoordinator) CancelAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, slot := range c.slots {
		if slot.cancel != nil {
			slot.cancel()
		}
	}
	clear(c.slots)
}

// State returns the state of the latest fetch for pos.
func (c *FetchCoordinator) State(pos int) FetchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slot, ok := c.slots[pos]; ok {
		return slot.state
	}
	return FetchIdle
}

// Current returns the latest generation issued for pos, zero if none.
func (c *FetchCoordinator) Current(pos int) Generation {
	c.mu.Lock()
	defer c.mu.Unlock()
	if slot, ok := c.slots[pos]; ok {
		return slot.gen
	}
	return 0
}

// IsCurrent reports whether gen is still the authoritative fetch for pos.
func (c *FetchCoordinator) IsCurrent(pos int, gen Generation) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	slot, ok := c.slots[pos]
	return ok && slot.gen == gen && slot.state != FetchCancelled
}

// Wait blocks until every started decode has handed its result to the dispatcher.
func (c *FetchCoordinator) Wait() {
	c.wg.Wait()
}
