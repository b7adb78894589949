package preheat

import (
	"fmt"
	"slices"
	"sync"
	"testing"

	"fyne.io/fyne/v2"

	"github.com/alexballas/xmediagrid/assets"
)

type cacheCall struct {
	op   string
	ids  []assets.ID
	size fyne.Size
}

type recordingCache struct {
	mu    sync.Mutex
	calls []cacheCall
}

func (r *recordingCache) StartCaching(ids []assets.ID, size fyne.Size) {
	r.record(cacheCall{op: "start", ids: slices.Clone(ids), size: size})
}

func (r *recordingCache) StopCaching(ids []assets.ID, size fyne.Size) {
	r.record(cacheCall{op: "stop", ids: slices.Clone(ids), size: size})
}

func (r *recordingCache) Reset() {
	r.record(cacheCall{op: "reset"})
}

func (r *recordingCache) record(c cacheCall) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
}

func (r *recordingCache) take() []cacheCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.calls
	r.calls = nil
	return out
}

func assetID(i int) assets.ID {
	return assets.ID(fmt.Sprintf("file:///media/clip%03d.mp4", i))
}

func idsFor(positions []int) []assets.ID {
	out := make([]assets.ID, 0, len(positions))
	for _, p := range positions {
		out = append(out, assetID(p))
	}
	return out
}

func makeSnapshot(t *testing.T, n int) *assets.Snapshot {
	t.Helper()
	items := make([]assets.Asset, n)
	for i := range items {
		items[i] = assets.Asset{ID: assetID(i), Kind: assets.KindVideo, Name: fmt.Sprintf("clip%03d.mp4", i)}
	}
	snap, err := assets.NewSnapshot(items)
	if err != nil {
		t.Fatalf("Failed to build snapshot: %v", err)
	}
	return snap
}

func TestCacheManager_SeamIdentifierOnlyStarted(t *testing.T) {
	cache := &recordingCache{}
	m := NewCacheManager(cache)
	snap := makeSnapshot(t, 10)
	size := fyne.NewSize(128, 128)

	delta := m.Apply(snap, []int{3}, []int{3}, size)

	calls := cache.take()
	if len(calls) != 2 {
		t.Fatalf("Expected exactly two calls, got %d: %+v", len(calls), calls)
	}
	if calls[0].op != "start" || !slices.Equal(calls[0].ids, []assets.ID{assetID(3)}) {
		t.Errorf("Unexpected start call %+v", calls[0])
	}
	if calls[1].op != "stop" || len(calls[1].ids) != 0 {
		t.Errorf("Unexpected stop call %+v", calls[1])
	}
	if calls[0].size != size || calls[1].size != size {
		t.Errorf("Size not forwarded: %+v", calls)
	}
	if len(delta.Stopped) != 0 {
		t.Errorf("Expected nothing stopped, got %v", delta.Stopped)
	}
}

func TestCacheManager_DedupesAndSkipsOutOfRange(t *testing.T) {
	cache := &recordingCache{}
	m := NewCacheManager(cache)
	snap := makeSnapshot(t, 5)

	delta := m.Apply(snap, []int{4, 1, 4, 9, -1}, []int{0, 0, 2}, fyne.Size{})

	if want := []assets.ID{assetID(4), assetID(1)}; !slices.Equal(delta.Started, want) {
		t.Errorf("Expected started %v, got %v", want, delta.Started)
	}
	if want := []assets.ID{assetID(0), assetID(2)}; !slices.Equal(delta.Stopped, want) {
		t.Errorf("Expected stopped %v, got %v", want, delta.Stopped)
	}
}

func TestCacheManager_EmptyCallsStillIssued(t *testing.T) {
	cache := &recordingCache{}
	m := NewCacheManager(cache)

	m.Apply(nil, nil, nil, fyne.Size{})

	calls := cache.take()
	if len(calls) != 2 || calls[0].op != "start" || calls[1].op != "stop" {
		t.Fatalf("Expected one start and one stop call, got %+v", calls)
	}
	if len(calls[0].ids) != 0 || len(calls[1].ids) != 0 {
		t.Errorf("Expected empty lists, got %+v", calls)
	}

	m.Reset()
	if calls := cache.take(); len(calls) != 1 || calls[0].op != "reset" {
		t.Errorf("Expected a single reset, got %+v", calls)
	}
}
