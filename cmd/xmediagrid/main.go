package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/alexballas/xmediagrid/assets"
	"github.com/alexballas/xmediagrid/assets/catalog"
)

// Config holds the flags shared by every command.
type Config struct {
	Debug  bool
	DBPath string
	FFmpeg string
}

func main() {
	rootCmd := newRootCmd(os.Stdout)

	if err := fang.Execute(context.Background(), rootCmd,
		fang.WithVersion("v0.1.0"),
		fang.WithErrorHandler(func(w io.Writer, styles fang.Styles, err error) {
			_, _ = fmt.Fprintln(w, err.Error())
		}),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	cfg := &Config{}

	rootCmd := &cobra.Command{
		Use:   "xmediagrid",
		Short: "Browse photo and video folders as a thumbnail grid",
		Long: `xmediagrid scans folders of photos and videos into a local catalog
and shows them in a scrolling grid that decodes thumbnails just before
they scroll into view.`,
		Example: `  # Scan a folder into the catalog
  xmediagrid scan ~/Videos

  # List scanned folders, or the items of one
  xmediagrid list
  xmediagrid list ~/Videos

  # Open the grid
  xmediagrid view ~/Videos`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), cfg.Debug)
		},
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().BoolVarP(&cfg.Debug, "debug", "d", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&cfg.DBPath, "db", defaultDBPath(), "Path to the catalog database")
	rootCmd.PersistentFlags().StringVar(&cfg.FFmpeg, "ffmpeg", "", "Path to the ffmpeg binary (default: from preferences or PATH)")

	rootCmd.AddCommand(scanCmd(cfg), listCmd(cfg), viewCmd(cfg))
	return rootCmd
}

func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func defaultDBPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "xmediagrid.db"
	}
	return filepath.Join(dir, "xmediagrid", "catalog.db")
}

func openCatalog(cfg *Config) (*catalog.Catalog, error) {
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, fmt.Errorf("create catalog directory: %w", err)
		}
	}
	return catalog.Open(cfg.DBPath)
}

// ensureApp returns the running fyne app, creating one if needed. Folder
// access goes through fyne storage, which needs an app even without windows.
func ensureApp() fyne.App {
	if a := fyne.CurrentApp(); a != nil {
		return a
	}
	return app.NewWithID(appID)
}

func ffmpegFor(cfg *Config) assets.FFmpeg {
	if cfg.FFmpeg != "" {
		return assets.FFmpeg{Path: cfg.FFmpeg}
	}
	return assets.FFmpegFromPreferences(ensureApp().Preferences())
}

// libraryKey is the catalog key of the folder at path.
func libraryKey(path string) (string, *assets.FolderSource, error) {
	ensureApp()
	src, err := assets.NewFolderSourceForPath(path)
	if err != nil {
		return "", nil, fmt.Errorf("open folder %s: %w", path, err)
	}
	return src.Dir().String(), src, nil
}
