package assets

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
)

var (
	ErrDuplicateAsset   = errors.New("duplicate asset identifier")
	ErrNotAuthorized    = errors.New("media library access not authorized")
	ErrUnsupportedMedia = errors.New("unsupported media")
)

// ID identifies a media item. For local files it is the file URI string.
type ID string

// IDForURI returns the identifier of the media item stored at u.
func IDForURI(u fyne.URI) ID {
	return ID(u.String())
}

// URI parses the identifier back into a URI.
func (id ID) URI() (fyne.URI, error) {
	return storage.ParseURI(string(id))
}

type MediaKind int

const (
	KindUnknown MediaKind = iota
	KindImage
	KindVideo
)

func (k MediaKind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "unknown"
	}
}

// ParseMediaKind is the inverse of MediaKind.String.
func ParseMediaKind(s string) MediaKind {
	switch s {
	case "image":
		return KindImage
	case "video":
		return KindVideo
	default:
		return KindUnknown
	}
}

// KindForURI classifies a file by extension.
func KindForURI(u fyne.URI) MediaKind {
	ext := strings.ToLower(filepath.Ext(u.Path()))
	switch {
	case isSupportedImage(ext):
		return KindImage
	case isSupportedVideo(ext):
		return KindVideo
	default:
		return KindUnknown
	}
}

func isSupportedImage(ext string) bool {
	return ext == ".jpg" || ext == ".jpeg" || ext == ".png"
}

func isSupportedVideo(ext string) bool {
	return ext == ".mp4" || ext == ".mkv" || ext == ".avi" || ext == ".webm" || ext == ".mov"
}

// Asset describes one media item.
type Asset struct {
	ID       ID
	Kind     MediaKind
	Name     string
	Duration time.Duration
}

// FormatDuration renders d as H:MM:SS for cell labels. Non-videos and
// unknown durations render as an empty string.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

// Snapshot is an immutable ordered list of assets. Positions are indices into
// it. A new fetch produces a new Snapshot; an existing one is never modified,
// so it can be read from any goroutine.
type Snapshot struct {
	items []Asset
	index map[ID]int
}

// NewSnapshot copies items into a Snapshot. Each ID may appear only once.
func NewSnapshot(items []Asset) (*Snapshot, error) {
	s := &Snapshot{
		items: make([]Asset, len(items)),
		index: make(map[ID]int, len(items)),
	}
	copy(s.items, items)
	for i, a := range s.items {
		if _, ok := s.index[a.ID]; ok {
			return nil, fmt.Errorf("position %d: %w: %s", i, ErrDuplicateAsset, a.ID)
		}
		s.index[a.ID] = i
	}
	return s, nil
}

// Len is safe on a nil Snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// At returns the asset at pos.
func (s *Snapshot) At(pos int) (Asset, bool) {
	if pos < 0 || pos >= s.Len() {
		return Asset{}, false
	}
	return s.items[pos], true
}

// ID returns the identifier at pos.
func (s *Snapshot) ID(pos int) (ID, bool) {
	a, ok := s.At(pos)
	return a.ID, ok
}

// Position returns the position of id.
func (s *Snapshot) Position(id ID) (int, bool) {
	if s == nil {
		return 0, false
	}
	i, ok := s.index[id]
	return i, ok
}

// Assets returns a copy of the ordered items.
func (s *Snapshot) Assets() []Asset {
	out := make([]Asset, s.Len())
	if s != nil {
		copy(out, s.items)
	}
	return out
}
