package assets

import (
	"context"
	"errors"
	"testing"
	"time"

	"fyne.io/fyne/v2/storage"
)

func TestNewSnapshot_Duplicate(t *testing.T) {
	_, err := NewSnapshot([]Asset{{ID: "a"}, {ID: "b"}, {ID: "a"}})
	if !errors.Is(err, ErrDuplicateAsset) {
		t.Fatalf("Expected ErrDuplicateAsset, got %v", err)
	}
}

func TestSnapshot_Lookup(t *testing.T) {
	items := []Asset{{ID: "a", Name: "a"}, {ID: "b", Name: "b"}}
	snap, err := NewSnapshot(items)
	if err != nil {
		t.Fatalf("Failed to build snapshot: %v", err)
	}

	// The snapshot must not see later changes to the input.
	items[0].Name = "changed"
	if a, _ := snap.At(0); a.Name != "a" {
		t.Errorf("Snapshot was modified through its input slice")
	}

	if id, ok := snap.ID(1); !ok || id != "b" {
		t.Errorf("Expected b at 1, got %q (ok=%v)", id, ok)
	}
	if _, ok := snap.ID(2); ok {
		t.Error("Position past the end should not resolve")
	}
	if _, ok := snap.ID(-1); ok {
		t.Error("Negative position should not resolve")
	}
	if pos, ok := snap.Position("b"); !ok || pos != 1 {
		t.Errorf("Expected b at position 1, got %d (ok=%v)", pos, ok)
	}

	var empty *Snapshot
	if empty.Len() != 0 || len(empty.Assets()) != 0 {
		t.Error("Nil snapshot should be empty")
	}
	if _, ok := empty.ID(0); ok {
		t.Error("Nil snapshot should resolve nothing")
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, ""},
		{-time.Second, ""},
		{90 * time.Second, "0:01:30"},
		{3725 * time.Second, "1:02:05"},
		{59*time.Second + 600*time.Millisecond, "0:01:00"},
	}
	for _, c := range cases {
		d, want := c.d, c.want
		if got := FormatDuration(d); got != want {
			t.Errorf("FormatDuration(%v) = %q, want %q", d, got, want)
		}
	}
}

func TestKindForURI(t *testing.T) {
	cases := map[string]MediaKind{
		"/tmp/a.JPG":  KindImage,
		"/tmp/a.png":  KindImage,
		"/tmp/a.mkv":  KindVideo,
		"/tmp/a.webm": KindVideo,
		"/tmp/a.txt":  KindUnknown,
		"/tmp/noext":  KindUnknown,
	}
	for path, want := range cases {
		if got := KindForURI(storage.NewFileURI(path)); got != want {
			t.Errorf("KindForURI(%s) = %s, want %s", path, got, want)
		}
	}

	for _, k := range []MediaKind{KindUnknown, KindImage, KindVideo} {
		if ParseMediaKind(k.String()) != k {
			t.Errorf("ParseMediaKind did not invert %s", k)
		}
	}
}

func TestID_URIRoundTrip(t *testing.T) {
	u := storage.NewFileURI("/tmp/holiday clip.mp4")
	id := IDForURI(u)
	back, err := id.URI()
	if err != nil {
		t.Fatalf("Failed to parse %q: %v", id, err)
	}
	if back.Path() != u.Path() {
		t.Errorf("Expected path %s, got %s", u.Path(), back.Path())
	}
}

type staticSource struct {
	status AuthorizationStatus
	items  []Asset
}

func (s *staticSource) AuthorizationStatus() AuthorizationStatus { return s.status }
func (s *staticSource) RequestAuthorization(ctx context.Context) (AuthorizationStatus, error) {
	return s.status, nil
}
func (s *staticSource) FetchAssets(ctx context.Context) ([]Asset, error) { return s.items, nil }

func TestFetchSnapshot(t *testing.T) {
	src := &staticSource{status: StatusDenied, items: []Asset{{ID: "a"}}}
	if _, err := FetchSnapshot(context.Background(), src); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("Expected ErrNotAuthorized, got %v", err)
	}

	src.status = StatusLimited
	snap, err := FetchSnapshot(context.Background(), src)
	if err != nil {
		t.Fatalf("FetchSnapshot failed: %v", err)
	}
	if snap.Len() != 1 {
		t.Errorf("Expected one asset, got %d", snap.Len())
	}
}
