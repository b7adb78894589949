package preheat

import (
	"fyne.io/fyne/v2"

	"github.com/alexballas/xmediagrid/assets"
)

// AssetCache is the external cache of decoded thumbnails.
type AssetCache interface {
	StartCaching(ids []assets.ID, size fyne.Size)
	StopCaching(ids []assets.ID, size fyne.Size)
	Reset()
}

// CacheDelta is the outcome of one CacheManager.Apply call.
type CacheDelta struct {
	Started []assets.ID
	Stopped []assets.ID
}

// CacheManager turns position changes into cache commands.
type CacheManager struct {
	cache AssetCache
}

func NewCacheManager(cache AssetCache) *CacheManager {
	return &CacheManager{cache: cache}
}

// Apply resolves added and removed positions through snap, deduplicates them
// by identifier, and issues exactly one StartCaching and one StopCaching call.
// Either list may be empty. An identifier present in both lists is only
// started, so a seam between rectangles never stops an item that stays in
// the window. Positions outside snap are ignored.
func (m *CacheManager) Apply(snap *assets.Snapshot, added, removed []int, size fyne.Size) CacheDelta {
	start := resolveIDs(snap, added, nil)

	keep := make(map[assets.ID]struct{}, len(start))
	for _, id := range start {
		keep[id] = struct{}{}
	}
	stop := resolveIDs(snap, removed, keep)

	m.cache.StartCaching(start, size)
	m.cache.StopCaching(stop, size)
	return CacheDelta{Started: start, Stopped: stop}
}

// Reset clears the cache.
func (m *CacheManager) Reset() {
	m.cache.Reset()
}

// resolveIDs maps positions to identifiers in first-seen order, skipping
// duplicates and anything in exclude.
func resolveIDs(snap *assets.Snapshot, positions []int, exclude map[assets.ID]struct{}) []assets.ID {
	ids := make([]assets.ID, 0, len(positions))
	seen := make(map[assets.ID]struct{}, len(positions))
	for _, pos := range positions {
		id, ok := snap.ID(pos)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, skip := exclude[id]; skip {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
