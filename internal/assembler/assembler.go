// Package assembler turns a job's completed clips into one final vertical
// video: download, concat, optional voice-over and captions.
package assembler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/DJIMIGA/latigue/internal/config"
	"github.com/DJIMIGA/latigue/internal/ffmpeg"
	"github.com/DJIMIGA/latigue/internal/models"
	"github.com/DJIMIGA/latigue/internal/store"
	"github.com/DJIMIGA/latigue/internal/tts"
)

// Options selects the optional assembly stages.
type Options struct {
	Voiceover bool
	Subtitles bool
	Voice     string
	// OutputDir is where the final file lands. Empty means a temp dir that is
	// removed along with the intermediates.
	OutputDir string
}

// Output describes the assembled video.
type Output struct {
	Path       string
	Duration   time.Duration
	FileSizeMB float64
	VoiceCost  float64
	// Metadata is the raw ffprobe format/stream report for the final file.
	// Nil when probing failed; that alone does not fail the assembly.
	Metadata map[string]interface{}
}

// Assembler downloads clips and drives ffmpeg. The TTS client may be nil when
// voice-over is disabled.
type Assembler struct {
	store      store.Store
	ttsClient  *tts.Client
	httpClient *http.Client
}

// New builds an assembler. ttsClient may be nil if Options.Voiceover will be
// false.
func New(st store.Store, ttsClient *tts.Client) *Assembler {
	return &Assembler{
		store:      st,
		ttsClient:  ttsClient,
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// Assemble produces the final video for a job. On any failure the job record
// is moved to error with the failure text before the error is returned, so a
// caller that ignores the error still leaves an inspectable record.
func (a *Assembler) Assemble(ctx context.Context, job *models.Job, opts Options) (*Output, error) {
	out, err := a.assemble(ctx, job, opts)
	if err != nil {
		if statusErr := a.store.SetJobStatus(ctx, job.ID, models.JobStatusError, err.Error()); statusErr != nil {
			config.Log.WithFields(map[string]interface{}{
				"job_id": job.ID,
				"error":  statusErr.Error(),
			}).Error("Failed to record assembly error")
		}
		return nil, err
	}
	return out, nil
}

func (a *Assembler) assemble(ctx context.Context, job *models.Job, opts Options) (*Output, error) {
	if err := a.store.SetJobStatus(ctx, job.ID, models.JobStatusAssembly, ""); err != nil {
		return nil, err
	}

	segments, err := a.store.ListSegments(ctx, job.ID)
	if err != nil {
		return nil, err
	}
	timeline, err := BuildTimeline(segments)
	if err != nil {
		return nil, err
	}

	workDir, err := os.MkdirTemp("", "assemble-"+job.ID+"-")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	// Intermediates always go; the final file survives only when OutputDir is
	// set, because it is moved out before cleanup.
	defer os.RemoveAll(workDir)

	clipPaths, err := a.downloadClips(ctx, timeline.Segments, workDir)
	if err != nil {
		return nil, err
	}

	current := filepath.Join(workDir, "concat.mp4")
	if err := ffmpeg.Concat(ctx, clipPaths, current); err != nil {
		return nil, err
	}

	voiceCost := 0.0
	if opts.Voiceover {
		if a.ttsClient == nil {
			return nil, fmt.Errorf("voice-over requested but TTS client is not configured")
		}
		voiceText := voiceoverText(job, timeline)
		audio, err := a.ttsClient.Synthesize(ctx, voiceText, opts.Voice)
		if err != nil {
			return nil, fmt.Errorf("voice synthesis: %w", err)
		}
		audioPath := filepath.Join(workDir, "voiceover.mp3")
		if err := os.WriteFile(audioPath, audio, 0o644); err != nil {
			return nil, fmt.Errorf("write voice-over: %w", err)
		}
		voiceCost = tts.EstimateCost(voiceText)

		withAudio := filepath.Join(workDir, "with_audio.mp4")
		if err := ffmpeg.AttachAudio(ctx, current, audioPath, withAudio); err != nil {
			return nil, err
		}
		current = withAudio
	}

	if opts.Subtitles {
		srtPath := filepath.Join(workDir, "captions.srt")
		if err := os.WriteFile(srtPath, []byte(timeline.SRT()), 0o644); err != nil {
			return nil, fmt.Errorf("write captions: %w", err)
		}
		withCaptions := filepath.Join(workDir, "with_captions.mp4")
		if err := ffmpeg.OverlayCaptions(ctx, current, srtPath, withCaptions); err != nil {
			return nil, err
		}
		current = withCaptions
	}

	finalPath := current
	if opts.OutputDir != "" {
		if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
		finalPath = filepath.Join(opts.OutputDir, fmt.Sprintf("%s.mp4", job.ID))
		if err := moveFile(current, finalPath); err != nil {
			return nil, err
		}
	}

	duration, err := ffmpeg.GetVideoDuration(finalPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(finalPath)
	if err != nil {
		return nil, fmt.Errorf("stat final video: %w", err)
	}

	metadata, err := ffmpeg.GetFullVideoMetadata(finalPath)
	if err != nil {
		config.Log.WithFields(map[string]interface{}{
			"job_id": job.ID,
			"error":  err.Error(),
		}).Warn("Could not probe final video metadata")
	}

	config.Log.WithFields(map[string]interface{}{
		"job_id":   job.ID,
		"path":     finalPath,
		"duration": duration.String(),
	}).Info("Assembly complete")

	return &Output{
		Path:       finalPath,
		Duration:   duration,
		FileSizeMB: float64(info.Size()) / (1024 * 1024),
		VoiceCost:  voiceCost,
		Metadata:   metadata,
	}, nil
}

func (a *Assembler) downloadClips(ctx context.Context, segments []models.Segment, workDir string) ([]string, error) {
	paths := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.VideoURL == "" {
			return nil, fmt.Errorf("segment %d has no video URL", seg.Order)
		}
		dest := filepath.Join(workDir, fmt.Sprintf("segment_%03d.mp4", seg.Order))
		if err := a.downloadFile(ctx, seg.VideoURL, dest); err != nil {
			return nil, fmt.Errorf("download segment %d: %w", seg.Order, err)
		}
		paths = append(paths, dest)
	}
	return paths, nil
}

func (a *Assembler) downloadFile(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	f, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		os.Remove(dest)
		return err
	}
	return nil
}

// voiceoverText prefers the script's dedicated voice-over; falls back to the
// segment texts joined in presentation order.
func voiceoverText(job *models.Job, timeline *Timeline) string {
	if len(job.ScriptJSON) > 0 {
		var scr struct {
			Voiceover string `json:"voiceover"`
		}
		if err := json.Unmarshal(job.ScriptJSON, &scr); err == nil && scr.Voiceover != "" {
			return scr.Voiceover
		}
	}
	text := ""
	for _, w := range timeline.Captions {
		if text != "" {
			text += " "
		}
		text += w.Text
	}
	return text
}

// moveFile renames when possible and falls back to copy for cross-device
// moves out of the temp dir.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return err
	}
	return out.Close()
}
