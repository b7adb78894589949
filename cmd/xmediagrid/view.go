package main

import (
	"fmt"
	"log/slog"
	"net/url"

	"fyne.io/fyne/v2"
	"github.com/spf13/cobra"

	"github.com/alexballas/xmediagrid/assets"
	"github.com/alexballas/xmediagrid/assets/catalog"
	"github.com/alexballas/xmediagrid/gallery"
	"github.com/alexballas/xmediagrid/preheat"
)

const appID = "io.github.alexballas.xmediagrid"

type viewOptions struct {
	buffer    float32
	threshold float32
	cached    bool
	save      bool
}

func viewCmd(cfg *Config) *cobra.Command {
	var opts viewOptions

	cmd := &cobra.Command{
		Use:   "view [folder]",
		Short: "Show a folder as a thumbnail grid",
		Long: `Show a folder as a thumbnail grid. Without a folder the system folder
picker is used. With --cached the item list comes from the catalog instead
of listing the folder.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := ensureApp()
			prefs := a.Preferences()

			popts := preheat.LoadOptions(prefs)
			if cmd.Flags().Changed("buffer") {
				popts.BufferFactor = opts.buffer
			}
			if cmd.Flags().Changed("threshold") {
				popts.UpdateThreshold = opts.threshold
			}
			if opts.save {
				popts.Save(prefs)
			}

			ff := ffmpegFor(cfg)
			if cfg.FFmpeg != "" {
				assets.SaveFFmpegPath(prefs, cfg.FFmpeg)
			}

			src, title, cleanup, err := viewSource(cfg, args, opts.cached)
			if err != nil {
				return err
			}
			defer cleanup()

			thumbs := assets.NewThumbnailCache(assets.CacheOptions{Loader: assets.FileLoader{FFmpeg: ff}})
			defer thumbs.Close()

			slog.Debug("opening gallery", "source", title, "buffer", popts.BufferFactor, "threshold", popts.UpdateThreshold)

			w := a.NewWindow("xmediagrid - " + title)
			if fs, ok := src.(*assets.FolderSource); ok {
				fs.SetParent(w)
			}

			g := gallery.New(src, thumbs, popts)
			g.OnSelected = func(item assets.Asset) {
				u, err := url.Parse(string(item.ID))
				if err != nil {
					fyne.LogError("Failed to open "+item.Name, err)
					return
				}
				if err := a.OpenURL(u); err != nil {
					fyne.LogError("Failed to open "+item.Name, err)
				}
			}
			defer g.Close()

			w.SetContent(g)
			w.Resize(fyne.NewSize(900, 640))
			g.Reload()
			w.ShowAndRun()
			return nil
		},
	}

	cmd.Flags().Float32Var(&opts.buffer, "buffer", preheat.DefaultBufferFactor, "Fraction of the viewport height preloaded above and below")
	cmd.Flags().Float32Var(&opts.threshold, "threshold", preheat.DefaultUpdateThreshold, "Fraction of the viewport height to scroll before the preload window moves")
	cmd.Flags().BoolVar(&opts.cached, "cached", false, "Read the item list from the catalog")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Store --buffer and --threshold as the new defaults")
	return cmd
}

func viewSource(cfg *Config, args []string, cached bool) (assets.Source, string, func(), error) {
	noop := func() {}

	if len(args) == 0 {
		if cached {
			return nil, "", noop, fmt.Errorf("--cached needs a folder")
		}
		return assets.NewFolderSource(nil), "Media", noop, nil
	}

	key, src, err := libraryKey(args[0])
	if err != nil {
		return nil, "", noop, err
	}
	if !cached {
		ff := ffmpegFor(cfg)
		if ff.Available() {
			src.Prober = ff
		}
		return src, src.Dir().Name(), noop, nil
	}

	cat, err := openCatalog(cfg)
	if err != nil {
		return nil, "", noop, err
	}
	return catalog.NewSource(cat, key), src.Dir().Name(), func() { cat.Close() }, nil
}
