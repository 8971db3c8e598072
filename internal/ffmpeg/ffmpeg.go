// Package ffmpeg wraps the ffmpeg/ffprobe binaries for the assembly stage.
// Every function shells out; ffmpeg must be on PATH.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/DJIMIGA/latigue/internal/config"
)

// Vertical 1080x1920 at 30fps is the output profile for Reels/TikTok.
const (
	outputWidth  = 1080
	outputHeight = 1920
	outputFPS    = 30
)

// FFProbeOutput holds the slice of ffprobe JSON output we care about.
type FFProbeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// GetVideoDuration uses ffprobe to read a media file's duration.
func GetVideoDuration(filePath string) (time.Duration, error) {
	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	)

	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %v\nStderr: %s", err, stderr.String())
	}

	var probe FFProbeOutput
	if err := json.Unmarshal(out.Bytes(), &probe); err != nil {
		return 0, fmt.Errorf("error unmarshalling ffprobe output: %v\nOutput: %s", err, out.String())
	}
	if probe.Format.Duration == "" {
		return 0, fmt.Errorf("could not retrieve duration from ffprobe output\nOutput: %s", out.String())
	}

	seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("error parsing duration string '%s': %v", probe.Format.Duration, err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// Concat joins clips in the given order using the concat demuxer with
// re-encoding, normalizing every clip to the vertical output profile.
func Concat(ctx context.Context, clipPaths []string, outputFile string) error {
	if len(clipPaths) == 0 {
		return fmt.Errorf("no clips to concatenate")
	}

	listFile, err := writeConcatList(clipPaths, filepath.Dir(outputFile))
	if err != nil {
		return err
	}
	defer os.Remove(listFile)

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-vf", fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,fps=%d",
			outputWidth, outputHeight, outputWidth, outputHeight, outputFPS),
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		outputFile,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg concat failed: %v\nStderr: %s", err, stderr.String())
	}

	config.Log.WithFields(map[string]interface{}{
		"clips":  len(clipPaths),
		"output": outputFile,
	}).Info("Concatenated clips")
	return nil
}

// writeConcatList produces the concat demuxer input file. Single quotes in
// paths are escaped per the demuxer's quoting rules.
func writeConcatList(clipPaths []string, dir string) (string, error) {
	var sb strings.Builder
	for _, p := range clipPaths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("resolve clip path %s: %w", p, err)
		}
		escaped := strings.ReplaceAll(abs, "'", `'\''`)
		fmt.Fprintf(&sb, "file '%s'\n", escaped)
	}

	f, err := os.CreateTemp(dir, "concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("create concat list: %w", err)
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write concat list: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// AttachAudio muxes an audio track onto a video. The audio is truncated to
// the video's duration; the video is never extended to fit the audio.
func AttachAudio(ctx context.Context, videoFile, audioFile, outputFile string) error {
	videoDuration, err := GetVideoDuration(videoFile)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", attachAudioArgs(videoFile, audioFile, outputFile, videoDuration)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg audio mux failed: %v\nStderr: %s", err, stderr.String())
	}

	config.Log.WithField("output", outputFile).Info("Attached voice-over audio")
	return nil
}

// attachAudioArgs builds the mux invocation. The -t bound is what enforces
// the truncation policy.
func attachAudioArgs(videoFile, audioFile, outputFile string, videoDuration time.Duration) []string {
	return []string{
		"-y",
		"-i", videoFile,
		"-i", audioFile,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-t", fmt.Sprintf("%.3f", videoDuration.Seconds()),
		outputFile,
	}
}

// OverlayCaptions burns an SRT subtitle file into the video.
func OverlayCaptions(ctx context.Context, inputFile, captionsFile, outputFile string) error {
	subtitlesFilter := fmt.Sprintf(
		"subtitles='%s':force_style='FontSize=14,Alignment=2,MarginV=60,PrimaryColour=&HFFFFFF&,OutlineColour=&H000000&,Outline=2'",
		strings.ReplaceAll(captionsFile, "'", `\'`),
	)

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-y",
		"-i", inputFile,
		"-vf", subtitlesFilter,
		"-c:a", "copy",
		outputFile,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg -vf subtitles failed: %v\nStderr: %s", err, stderr.String())
	}

	config.Log.WithField("output", outputFile).Info("Overlaid captions")
	return nil
}

// GetFullVideoMetadata retrieves format and stream metadata for a video file.
func GetFullVideoMetadata(filePath string) (map[string]interface{}, error) {
	cmd := exec.Command("ffprobe",
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe -show_format -show_streams failed: %v\nStderr: %s", err, stderr.String())
	}

	var metadata map[string]interface{}
	if err := json.Unmarshal(stdout.Bytes(), &metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ffprobe JSON output: %v\nStdout: %s", err, stdout.String())
	}
	return metadata, nil
}
