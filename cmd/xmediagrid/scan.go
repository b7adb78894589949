package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexballas/xmediagrid/assets"
)

func scanCmd(cfg *Config) *cobra.Command {
	var showHidden bool

	cmd := &cobra.Command{
		Use:   "scan <folder>",
		Short: "Scan a folder into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, src, err := libraryKey(args[0])
			if err != nil {
				return err
			}
			src.ShowHidden = showHidden

			if status := src.AuthorizationStatus(); !status.Granted() {
				return fmt.Errorf("%w: %s (%s)", assets.ErrNotAuthorized, args[0], status)
			}

			ff := ffmpegFor(cfg)
			if ff.Available() {
				src.Prober = ff
			} else {
				slog.Warn("ffmpeg not found, video durations will be unknown", "ffmpeg", ff.Path)
			}

			cat, err := openCatalog(cfg)
			if err != nil {
				return err
			}
			defer cat.Close()

			start := time.Now()
			items, err := src.FetchAssets(cmd.Context())
			if err != nil {
				return fmt.Errorf("scan %s: %w", args[0], err)
			}
			if err := cat.Replace(cmd.Context(), key, items); err != nil {
				return fmt.Errorf("save %s: %w", args[0], err)
			}

			slog.Debug("scanned library", "library", key, "items", len(items), "took", time.Since(start))
			fmt.Fprintf(cmd.OutOrStdout(), "Scanned %d items from %s\n", len(items), src.Dir().Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&showHidden, "hidden", false, "Include hidden files")
	return cmd
}
