//go:build flatpak && !windows && !android && !ios && !wasm && !js

package assets

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/storage"

	"github.com/rymdport/portal"
	"github.com/rymdport/portal/filechooser"
)

type folderResult struct {
	dir fyne.ListableURI
	err error
}

// requestFolder asks the file chooser portal for a folder; choosing one
// grants the sandbox access to it.
func requestFolder(ctx context.Context, parent fyne.Window, current fyne.ListableURI) (fyne.ListableURI, error) {
	options := &filechooser.OpenFileOptions{
		AcceptLabel: lang.L("Open"),
		Directory:   true,
	}
	if current != nil {
		options.CurrentFolder = current.Path()
	}
	windowHandle := windowHandleForPortal(parent)

	done := make(chan folderResult, 1)
	go func() {
		uris, err := filechooser.OpenFile(windowHandle, lang.L("Open")+" "+lang.L("Folder"), options)
		if err != nil || len(uris) == 0 {
			done <- folderResult{err: err}
			return
		}
		uri, err := storage.ParseURI(uris[0])
		if err != nil {
			done <- folderResult{err: err}
			return
		}
		dir, err := storage.ListerForURI(uri)
		done <- folderResult{dir: dir, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		return res.dir, res.err
	}
}

func windowHandleForPortal(window fyne.Window) string {
	if window == nil {
		return ""
	}
	native, ok := window.(driver.NativeWindow)
	if !ok {
		return ""
	}

	windowHandle := ""
	native.RunNative(func(context any) {
		if x11, ok := context.(driver.X11WindowContext); ok {
			windowHandle = portal.FormatX11WindowHandle(x11.WindowHandle)
		}
	})
	return windowHandle
}
