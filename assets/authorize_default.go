//go:build !flatpak || windows || android || ios || wasm || js

package assets

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
)

type folderResult struct {
	dir fyne.ListableURI
	err error
}

// requestFolder returns the folder to serve. A readable desktop folder is
// used as is; otherwise the user picks one. On mobile the picked folder is
// the only one the app is granted.
func requestFolder(ctx context.Context, parent fyne.Window, current fyne.ListableURI) (fyne.ListableURI, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mobile := fyne.CurrentDevice().IsMobile()
	if !mobile && current != nil && checkAccess(current).Granted() {
		return current, nil
	}
	if parent == nil {
		if mobile {
			return nil, ErrNotAuthorized
		}
		return defaultFolder(), nil
	}
	return pickFolder(ctx, parent, current)
}

func pickFolder(ctx context.Context, parent fyne.Window, current fyne.ListableURI) (fyne.ListableURI, error) {
	start := current
	if start == nil {
		start = defaultFolder()
	}

	done := make(chan folderResult, 1)
	fyne.Do(func() {
		d := dialog.NewFolderOpen(func(dir fyne.ListableURI, err error) {
			done <- folderResult{dir: dir, err: err}
		}, parent)
		if start != nil {
			d.SetLocation(start)
		}
		d.Show()
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.dir, res.err
	}
}
