package assets

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
)

const ffmpegPathKey = "xmediagrid:ffmpegPath"

var durationRe = regexp.MustCompile(`Duration: (\d{2}):(\d{2}):(\d{2})\.(\d{2})`)

// FFmpeg probes and grabs frames from video files with an ffmpeg binary.
type FFmpeg struct {
	Path string
}

// FFmpegFromPreferences returns the ffmpeg configured in prefs, or "ffmpeg" from PATH.
func FFmpegFromPreferences(prefs fyne.Preferences) FFmpeg {
	if prefs == nil {
		return FFmpeg{Path: "ffmpeg"}
	}
	return FFmpeg{Path: prefs.StringWithFallback(ffmpegPathKey, "ffmpeg")}
}

// SaveFFmpegPath stores path as the ffmpeg binary to use.
func SaveFFmpegPath(prefs fyne.Preferences, path string) {
	prefs.SetString(ffmpegPathKey, path)
}

func (f FFmpeg) bin() string {
	if f.Path == "" {
		return "ffmpeg"
	}
	return f.Path
}

// Available reports whether the ffmpeg binary can be found.
func (f FFmpeg) Available() bool {
	_, err := exec.LookPath(f.bin())
	return err == nil
}

// ProbeDuration reads the container duration from ffmpeg's banner.
func (f FFmpeg) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	cmd := hideWindow(exec.CommandContext(ctx, f.bin(), "-i", path))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// ffmpeg exits non-zero without an output file; the banner is still printed.
	_ = cmd.Run()
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return parseDuration(stderr.String())
}

func parseDuration(out string) (time.Duration, error) {
	m := durationRe.FindStringSubmatch(out)
	if len(m) < 5 {
		return 0, fmt.Errorf("could not find duration in output")
	}

	var parts [4]int
	for i := range parts {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("parse duration %q: %w", m[0], err)
		}
		parts[i] = n
	}

	return time.Duration(parts[0])*time.Hour +
		time.Duration(parts[1])*time.Minute +
		time.Duration(parts[2])*time.Second +
		time.Duration(parts[3]*10)*time.Millisecond, nil
}

// Frame grabs one frame from the middle of the video at path.
func (f FFmpeg) Frame(ctx context.Context, path string) (image.Image, error) {
	duration, err := f.ProbeDuration(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		duration = time.Second
	}

	seek := duration / 2
	seekStr := fmt.Sprintf("%02d:%02d:%02d.%03d",
		int(seek.Hours()),
		int(seek.Minutes())%60,
		int(seek.Seconds())%60,
		seek.Milliseconds()%1000)

	// Input seeking (-ss before -i) is less accurate but much faster.
	cmd := hideWindow(exec.CommandContext(ctx, f.bin(), "-ss", seekStr, "-i", path, "-vframes", "1", "-f", "image2", "-strict", "unofficial", "-"))
	var buf bytes.Buffer
	cmd.Stdout = &buf
	if err := cmd.Run(); err != nil {
		return nil, err
	}

	img, _, err := image.Decode(&buf)
	return img, err
}
