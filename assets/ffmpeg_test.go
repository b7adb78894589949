package assets

import (
	"context"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
)

func TestParseDuration(t *testing.T) {
	out := "  Duration: 01:02:03.45, start: 0.000000, bitrate: 1205 kb/s"
	d, err := parseDuration(out)
	if err != nil {
		t.Fatalf("parseDuration failed: %v", err)
	}
	want := time.Hour + 2*time.Minute + 3*time.Second + 450*time.Millisecond
	if d != want {
		t.Errorf("Expected %v, got %v", want, d)
	}

	if _, err := parseDuration("no banner here"); err == nil {
		t.Error("Expected an error without a duration")
	}
}

func TestFFmpeg_Preferences(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	if got := FFmpegFromPreferences(a.Preferences()); got.Path != "ffmpeg" {
		t.Errorf("Expected ffmpeg from PATH by default, got %q", got.Path)
	}
	SaveFFmpegPath(a.Preferences(), "/opt/ffmpeg/bin/ffmpeg")
	if got := FFmpegFromPreferences(a.Preferences()); got.Path != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("Unexpected path %q", got.Path)
	}
}

// makeVideo renders a short solid red clip, skipping the test without ffmpeg.
func makeVideo(t *testing.T, size string) string {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found")
	}

	path := filepath.Join(t.TempDir(), "clip_"+size+".mp4")
	cmd := exec.Command("ffmpeg", "-f", "lavfi", "-i", "color=c=red:s="+size+":d=1",
		"-c:v", "libx264", "-pix_fmt", "yuv420p", "-y", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("failed to create video: %v, output: %s", err, out)
	}
	return path
}

func TestFFmpeg_ProbeAndFrame(t *testing.T) {
	path := makeVideo(t, "320x180")
	f := FFmpeg{Path: "ffmpeg"}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	d, err := f.ProbeDuration(ctx, path)
	if err != nil {
		t.Fatalf("ProbeDuration failed: %v", err)
	}
	if d < 900*time.Millisecond || d > 1100*time.Millisecond {
		t.Errorf("Expected about one second, got %v", d)
	}

	img, err := f.Frame(ctx, path)
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Errorf("Expected a 320x180 frame, got %dx%d", b.Dx(), b.Dy())
	}
}
