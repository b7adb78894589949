package assets

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"golang.org/x/image/draw"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// defaultThumbnailSize is used when a request carries no size.
const defaultThumbnailSize = 128

// Loader reads the full-size image for a media item.
type Loader interface {
	Load(ctx context.Context, id ID) (image.Image, error)
}

// FileLoader loads local images directly and grabs a frame from videos.
type FileLoader struct {
	FFmpeg FFmpeg
}

func (l FileLoader) Load(ctx context.Context, id ID) (image.Image, error) {
	u, err := id.URI()
	if err != nil {
		return nil, err
	}
	if u.Scheme() != "file" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, id)
	}

	switch KindForURI(u) {
	case KindImage:
		return loadImage(u.Path())
	case KindVideo:
		return l.FFmpeg.Frame(ctx, u.Path())
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, id)
	}
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// CacheOptions configures a ThumbnailCache.
type CacheOptions struct {
	// Workers decode warm requests in the background.
	Workers int
	// QueueLimit bounds pending warm requests; the oldest is dropped first.
	QueueLimit int
	// MemoryLimit bounds the number of decoded thumbnails kept in memory.
	MemoryLimit int
	// WarmInterval paces background decodes.
	WarmInterval time.Duration
	// Loader reads source images. Nil uses a FileLoader.
	Loader Loader
}

func DefaultCacheOptions() CacheOptions {
	return CacheOptions{
		Workers:      4,
		QueueLimit:   100,
		MemoryLimit:  1000,
		WarmInterval: 5 * time.Millisecond,
	}
}

// CacheStats is a point-in-time view of a ThumbnailCache.
type CacheStats struct {
	Entries int
	Pending int
	Hits    uint64
	Misses  uint64
}

type thumbKey struct {
	id   ID
	w, h int
}

func (k thumbKey) String() string {
	return fmt.Sprintf("%dx%d:%s", k.w, k.h, k.id)
}

func keyFor(id ID, size fyne.Size) thumbKey {
	w, h := int(size.Width+0.5), int(size.Height+0.5)
	if w <= 0 || h <= 0 {
		w, h = defaultThumbnailSize, defaultThumbnailSize
	}
	return thumbKey{id: id, w: w, h: h}
}

type cacheEntry struct {
	key thumbKey
	img image.Image
}

// ThumbnailCache keeps letterboxed thumbnails in memory. StartCaching queues
// background decodes, StopCaching drops them, and Decode serves a single
// thumbnail on demand. Concurrent decodes of the same thumbnail share one load.
type ThumbnailCache struct {
	opts    CacheOptions
	loader  Loader
	limiter *rate.Limiter
	flights singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	cond    *sync.Cond
	entries map[thumbKey]*list.Element
	lru     *list.List
	queue   []thumbKey
	queued  map[thumbKey]struct{}
	// loading maps keys being filled to whether they were stopped meanwhile.
	loading map[thumbKey]bool
	epoch   uint64
	closed  bool

	hits   atomic.Uint64
	misses atomic.Uint64
}

// NewThumbnailCache starts the background workers. Call Close to stop them.
func NewThumbnailCache(opts CacheOptions) *ThumbnailCache {
	d := DefaultCacheOptions()
	if opts.Workers <= 0 {
		opts.Workers = d.Workers
	}
	if opts.QueueLimit <= 0 {
		opts.QueueLimit = d.QueueLimit
	}
	if opts.MemoryLimit <= 0 {
		opts.MemoryLimit = d.MemoryLimit
	}
	if opts.Loader == nil {
		opts.Loader = FileLoader{}
	}

	limit := rate.Inf
	if opts.WarmInterval > 0 {
		limit = rate.Every(opts.WarmInterval)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &ThumbnailCache{
		opts:    opts,
		loader:  opts.Loader,
		limiter: rate.NewLimiter(limit, opts.Workers),
		ctx:     ctx,
		cancel:  cancel,
		entries: make(map[thumbKey]*list.Element),
		lru:     list.New(),
		queued:  make(map[thumbKey]struct{}),
		loading: make(map[thumbKey]bool),
	}
	c.cond = sync.NewCond(&c.mu)

	for range opts.Workers {
		c.wg.Add(1)
		go c.worker()
	}
	return c
}

// Close stops the workers and waits for them to exit.
func (c *ThumbnailCache) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.queue = nil
	clear(c.queued)
	c.cond.Broadcast()
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

// StartCaching queues background decodes for ids at size.
func (c *ThumbnailCache) StartCaching(ids []ID, size fyne.Size) {
	if len(ids) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	for _, id := range ids {
		key := keyFor(id, size)
		if _, ok := c.loading[key]; ok {
			c.loading[key] = false
		}
		if el, ok := c.entries[key]; ok {
			c.lru.MoveToFront(el)
			continue
		}
		if _, ok := c.queued[key]; ok {
			continue
		}
		// Keep the pending set small and relevant: drop the oldest request.
		if len(c.queue) >= c.opts.QueueLimit {
			delete(c.queued, c.queue[0])
			c.queue = c.queue[1:]
		}
		c.queue = append(c.queue, key)
		c.queued[key] = struct{}{}
	}
	c.cond.Broadcast()
}

// StopCaching cancels pending decodes for ids and releases their thumbnails.
func (c *ThumbnailCache) StopCaching(ids []ID, size fyne.Size) {
	if len(ids) == 0 {
		return
	}

	drop := make(map[thumbKey]struct{}, len(ids))
	for _, id := range ids {
		drop[keyFor(id, size)] = struct{}{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.queue[:0]
	for _, key := range c.queue {
		if _, ok := drop[key]; ok {
			delete(c.queued, key)
			continue
		}
		kept = append(kept, key)
	}
	c.queue = kept

	for key := range drop {
		if _, ok := c.loading[key]; ok {
			c.loading[key] = true
		}
		if el, ok := c.entries[key]; ok {
			c.lru.Remove(el)
			delete(c.entries, key)
		}
	}
}

// Reset drops every pending request and cached thumbnail.
func (c *ThumbnailCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epoch++
	c.queue = nil
	clear(c.queued)
	clear(c.entries)
	c.lru.Init()
}

// Cached returns the thumbnail for id at size if it is already in memory.
func (c *ThumbnailCache) Cached(id ID, size fyne.Size) (image.Image, bool) {
	return c.lookup(keyFor(id, size))
}

// Decode returns the thumbnail for id at size, loading it if needed.
// Cancelling ctx returns early; the shared load itself runs to completion
// and its result stays cached.
func (c *ThumbnailCache) Decode(ctx context.Context, id ID, size fyne.Size) (image.Image, error) {
	key := keyFor(id, size)
	if img, ok := c.lookup(key); ok {
		return img, nil
	}

	ch := c.flights.DoChan(key.String(), func() (any, error) {
		return c.fill(key)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	}
}

// Stats reports the cache state.
func (c *ThumbnailCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{
		Entries: len(c.entries),
		Pending: len(c.queue),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}

func (c *ThumbnailCache) lookup(key thumbKey) (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.entries[key]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	c.lru.MoveToFront(el)
	c.hits.Add(1)
	return el.Value.(*cacheEntry).img, true
}

// fill loads and scales one thumbnail and stores it, unless the cache was
// reset or the key stopped while loading.
func (c *ThumbnailCache) fill(key thumbKey) (image.Image, error) {
	c.mu.Lock()
	epoch := c.epoch
	c.loading[key] = false
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.loading, key)
		c.mu.Unlock()
	}()

	src, err := c.loader.Load(c.ctx, key.id)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, key.id)
	}
	img, err := letterbox(src, key.w, key.h)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch == epoch && !c.closed && !c.loading[key] {
		c.put(key, img)
	}
	return img, nil
}

// put must be called with c.mu held.
func (c *ThumbnailCache) put(key thumbKey, img image.Image) {
	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry).img = img
		c.lru.MoveToFront(el)
		return
	}
	c.entries[key] = c.lru.PushFront(&cacheEntry{key: key, img: img})
	for c.lru.Len() > c.opts.MemoryLimit {
		oldest := c.lru.Back()
		c.lru.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func (c *ThumbnailCache) worker() {
	defer c.wg.Done()
	for {
		c.mu.Lock()
		for len(c.queue) == 0 && !c.closed {
			c.cond.Wait()
		}
		if c.closed {
			c.mu.Unlock()
			return
		}
		// Newest first: the window most recently scrolled into wins.
		last := len(c.queue) - 1
		key := c.queue[last]
		c.queue = c.queue[:last]
		delete(c.queued, key)
		c.mu.Unlock()

		if err := c.limiter.Wait(c.ctx); err != nil {
			return
		}
		if _, ok := c.lookup(key); ok {
			continue
		}
		_, err, _ := c.flights.Do(key.String(), func() (any, error) {
			return c.fill(key)
		})
		if err != nil && !errors.Is(err, ErrUnsupportedMedia) && !errors.Is(err, context.Canceled) {
			fyne.LogError("Failed to warm thumbnail for "+string(key.id), err)
		}
	}
}

// letterbox scales src to fit w×h, centered on black.
func letterbox(src image.Image, w, h int) (image.Image, error) {
	srcBounds := src.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUnsupportedMedia)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: image.Black}, image.Point{}, draw.Src)

	scale := min(float64(w)/float64(srcW), float64(h)/float64(srcH))
	scaledW := max(int(float64(srcW)*scale), 1)
	scaledH := max(int(float64(srcH)*scale), 1)

	xBase := (w - scaledW) / 2
	yBase := (h - scaledH) / 2
	target := image.Rect(xBase, yBase, xBase+scaledW, yBase+scaledH)

	// ApproxBiLinear for speed.
	draw.ApproxBiLinear.Scale(dst, target, src, srcBounds, draw.Over, nil)
	return dst, nil
}
