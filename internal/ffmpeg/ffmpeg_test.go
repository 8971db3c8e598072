package ffmpeg

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAttachAudioArgsTruncatesToVideoDuration(t *testing.T) {
	args := attachAudioArgs("video.mp4", "voice.mp3", "out.mp4", 12500*time.Millisecond)

	// The audio must be bounded by the video length, never the other way
	// around.
	found := false
	for i, a := range args {
		if a == "-t" {
			found = true
			if args[i+1] != "12.500" {
				t.Errorf("-t = %q, want the video duration 12.500", args[i+1])
			}
		}
	}
	if !found {
		t.Fatal("args carry no -t bound, audio longer than video would extend the output")
	}

	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-map 0:v:0") || !strings.Contains(joined, "-map 1:a:0") {
		t.Errorf("args = %q, want explicit video/audio stream mapping", joined)
	}
	if !strings.Contains(joined, "-c:v copy") {
		t.Errorf("args = %q, the video stream must not be re-encoded", joined)
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("last arg = %q, want the output file", args[len(args)-1])
	}
}

func TestWriteConcatListEscapesQuotes(t *testing.T) {
	dir := t.TempDir()
	listFile, err := writeConcatList([]string{filepath.Join(dir, "it's.mp4")}, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(listFile)

	raw, err := os.ReadFile(listFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `it'\''s.mp4`) {
		t.Errorf("list content %q, single quotes must use the demuxer escape", raw)
	}
	if !strings.HasPrefix(string(raw), "file '") {
		t.Errorf("list content %q, want file directives", raw)
	}
}

func TestGetFullVideoMetadata(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not installed")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not installed")
	}

	dir := t.TempDir()
	sample := filepath.Join(dir, "sample.mp4")
	gen := exec.CommandContext(context.Background(), "ffmpeg",
		"-f", "lavfi",
		"-i", "color=c=black:s=64x64:d=1",
		"-pix_fmt", "yuv420p",
		sample,
	)
	if out, err := gen.CombinedOutput(); err != nil {
		t.Fatalf("generate sample video: %v\n%s", err, out)
	}

	meta, err := GetFullVideoMetadata(sample)
	if err != nil {
		t.Fatalf("GetFullVideoMetadata: %v", err)
	}
	if _, ok := meta["format"]; !ok {
		t.Error("metadata has no format section")
	}
	streams, ok := meta["streams"].([]interface{})
	if !ok || len(streams) == 0 {
		t.Error("metadata has no streams section")
	}

	duration, err := GetVideoDuration(sample)
	if err != nil {
		t.Fatalf("GetVideoDuration: %v", err)
	}
	if duration <= 0 || duration > 3*time.Second {
		t.Errorf("duration = %v, want about 1s", duration)
	}
}
