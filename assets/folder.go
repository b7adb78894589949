package assets

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/storage"
	"github.com/FyshOS/fancyfs"
	"golang.org/x/sync/errgroup"
)

// DurationProber reads the duration of a video file.
type DurationProber interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

// FolderSource serves the images and videos of one local folder.
type FolderSource struct {
	// ShowHidden includes dot files.
	ShowHidden bool
	// Prober fills in video durations. Nil leaves them unknown.
	Prober DurationProber
	// ProbeWorkers caps concurrent probes; 4 when zero.
	ProbeWorkers int

	mu     sync.Mutex
	dir    fyne.ListableURI
	parent fyne.Window
	status AuthorizationStatus
}

// NewFolderSource serves dir. A nil dir starts in StatusNotDetermined and
// asks for a folder on RequestAuthorization.
func NewFolderSource(dir fyne.ListableURI) *FolderSource {
	return &FolderSource{dir: dir}
}

// NewFolderSourceForPath serves the folder at path.
func NewFolderSourceForPath(path string) (*FolderSource, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	dir, err := storage.ListerForURI(storage.NewFileURI(abs))
	if err != nil {
		return nil, err
	}
	return NewFolderSource(dir), nil
}

// SetParent sets the window used by platform folder pickers.
func (f *FolderSource) SetParent(w fyne.Window) {
	f.mu.Lock()
	f.parent = w
	f.mu.Unlock()
}

// SetDir switches to dir. Access is checked again on next use.
func (f *FolderSource) SetDir(dir fyne.ListableURI) {
	f.mu.Lock()
	f.dir = dir
	f.status = StatusNotDetermined
	f.mu.Unlock()
}

// Dir returns the folder being served, nil until one is chosen.
func (f *FolderSource) Dir() fyne.ListableURI {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dir
}

func (f *FolderSource) AuthorizationStatus() AuthorizationStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status == StatusNotDetermined && f.dir != nil {
		f.status = checkAccess(f.dir)
	}
	return f.status
}

// RequestAuthorization asks the platform for access to a folder. Inside a
// sandbox this opens the system folder picker.
func (f *FolderSource) RequestAuthorization(ctx context.Context) (AuthorizationStatus, error) {
	f.mu.Lock()
	current, parent := f.dir, f.parent
	f.mu.Unlock()

	dir, err := requestFolder(ctx, parent, current)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return f.AuthorizationStatus(), err
		}
		f.setStatus(nil, StatusDenied)
		return StatusDenied, err
	}
	if dir == nil {
		f.setStatus(nil, StatusDenied)
		return StatusDenied, nil
	}

	status := checkAccess(dir)
	f.setStatus(dir, status)
	return status, nil
}

func (f *FolderSource) setStatus(dir fyne.ListableURI, status AuthorizationStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if dir != nil {
		f.dir = dir
	}
	f.status = status
}

func checkAccess(dir fyne.ListableURI) AuthorizationStatus {
	if _, err := dir.List(); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return StatusDenied
		}
		return StatusRestricted
	}
	return StatusAuthorized
}

// FetchAssets lists the supported media in the folder sorted by name.
func (f *FolderSource) FetchAssets(ctx context.Context) ([]Asset, error) {
	dir := f.Dir()
	if dir == nil || !f.AuthorizationStatus().Granted() {
		return nil, ErrNotAuthorized
	}

	files, err := dir.List()
	if err != nil {
		return nil, err
	}

	var items []Asset
	for _, u := range files {
		if !f.ShowHidden && isHidden(u) {
			continue
		}
		if isDir, _ := storage.CanList(u); isDir {
			continue
		}
		kind := KindForURI(u)
		if kind == KindUnknown {
			continue
		}
		items = append(items, Asset{ID: IDForURI(u), Kind: kind, Name: u.Name()})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})

	if f.Prober != nil {
		if err := f.probeDurations(ctx, items); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (f *FolderSource) probeDurations(ctx context.Context, items []Asset) error {
	workers := f.ProbeWorkers
	if workers <= 0 {
		workers = 4
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range items {
		if items[i].Kind != KindVideo {
			continue
		}
		g.Go(func() error {
			u, err := items[i].ID.URI()
			if err != nil {
				return nil
			}
			d, err := f.Prober.ProbeDuration(ctx, u.Path())
			if err != nil {
				// An unreadable duration only hides the label.
				return ctx.Err()
			}
			items[i].Duration = d
			return nil
		})
	}
	return g.Wait()
}

// Cover is a folder background set through the desktop's folder customisation.
type Cover struct {
	Resource fyne.Resource
	URI      fyne.URI
	Fill     canvas.ImageFill
}

// Cover returns the folder's custom background, if it has one.
func (f *FolderSource) Cover() (Cover, bool) {
	dir := f.Dir()
	if dir == nil {
		return Cover{}, false
	}
	details, err := fancyfs.DetailsForFolder(dir)
	if err != nil || details == nil {
		return Cover{}, false
	}
	if details.BackgroundResource == nil && details.BackgroundURI == nil {
		return Cover{}, false
	}
	return Cover{
		Resource: details.BackgroundResource,
		URI:      details.BackgroundURI,
		Fill:     details.BackgroundFill,
	}, true
}

func isHidden(file fyne.URI) bool {
	if file.Scheme() != "file" {
		return false
	}
	name := filepath.Base(file.Path())
	return name == "" || name[0] == '.'
}

// defaultFolder is the user's video folder when present, else the home folder.
func defaultFolder() fyne.ListableURI {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	for _, p := range []string{filepath.Join(home, "Videos"), home} {
		if l, err := storage.ListerForURI(storage.NewFileURI(p)); err == nil {
			return l
		}
	}
	return nil
}
