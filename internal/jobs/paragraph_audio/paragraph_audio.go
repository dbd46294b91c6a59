// Package paragraph_audio generates TTS audio for a single paragraph:
// sentence-split the text, synthesize each segment, concatenate with ffmpeg,
// and record the result on the paragraph.
package paragraph_audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/avast/retry-go/v4"

	"github.com/jackzampolin/lectern/internal/audio"
	"github.com/jackzampolin/lectern/internal/books"
	"github.com/jackzampolin/lectern/internal/home"
	"github.com/jackzampolin/lectern/internal/providers"
)

// JobType identifies paragraph audio generation jobs.
const JobType = "paragraph_audio"

// Config wires a paragraph audio job.
type Config struct {
	ParagraphID     string
	Voice           string
	Format          string // default "mp3"
	MaxSegmentChars int    // default audio.DefaultMaxSegmentChars

	Books    *books.Store
	Provider providers.TTSProvider
	Home     *home.Dir
	Logger   *slog.Logger
}

// Job generates audio for one paragraph.
type Job struct {
	cfg Config

	mu       sync.Mutex
	total    int
	done     int
	stage    string
	costUSD  float64
	duration int
}

// New creates a paragraph audio job.
func New(cfg Config) (*Job, error) {
	if cfg.ParagraphID == "" {
		return nil, fmt.Errorf("paragraph ID is required")
	}
	if cfg.Books == nil || cfg.Provider == nil || cfg.Home == nil {
		return nil, fmt.Errorf("books store, provider, and home dir are required")
	}
	if cfg.Format == "" {
		cfg.Format = "mp3"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Job{cfg: cfg, stage: "queued"}, nil
}

// Type returns the job type identifier.
func (j *Job) Type() string { return JobType }

// Status reports synthesis progress.
func (j *Job) Status() map[string]string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return map[string]string{
		"stage":          j.stage,
		"segments_total": fmt.Sprintf("%d", j.total),
		"segments_done":  fmt.Sprintf("%d", j.done),
		"cost_usd":       fmt.Sprintf("%.4f", j.costUSD),
		"duration_ms":    fmt.Sprintf("%d", j.duration),
	}
}

func (j *Job) setStage(stage string) {
	j.mu.Lock()
	j.stage = stage
	j.mu.Unlock()
}

// Execute runs the generation. On failure the paragraph's audio status is
// set to failed so the UI can offer a retry.
func (j *Job) Execute(ctx context.Context) error {
	p, err := j.cfg.Books.GetParagraph(ctx, j.cfg.ParagraphID)
	if err != nil {
		return err
	}

	if err := j.cfg.Books.SetParagraphAudio(ctx, p.ID, p.AudioPath, books.AudioPending); err != nil {
		return err
	}

	path, err := j.generate(ctx, p)
	if err != nil {
		if statusErr := j.cfg.Books.SetParagraphAudio(ctx, p.ID, p.AudioPath, books.AudioFailed); statusErr != nil {
			j.cfg.Logger.Warn("failed to mark paragraph audio failed",
				"paragraph_id", p.ID, "error", statusErr)
		}
		return err
	}

	return j.cfg.Books.SetParagraphAudio(ctx, p.ID, path, books.AudioReady)
}

func (j *Job) generate(ctx context.Context, p *books.Paragraph) (string, error) {
	segments := audio.SplitSentences(p.Content, j.cfg.MaxSegmentChars)
	if len(segments) == 0 {
		return "", fmt.Errorf("paragraph %s has no speakable text", p.ID)
	}

	j.mu.Lock()
	j.total = len(segments)
	j.stage = "synthesizing"
	j.mu.Unlock()

	if err := j.cfg.Home.EnsureBookAudioDir(p.BookID); err != nil {
		return "", fmt.Errorf("create audio directory: %w", err)
	}

	segmentPaths := make([]string, 0, len(segments))
	defer func() {
		for _, sp := range segmentPaths {
			os.Remove(sp)
		}
	}()

	for i, segment := range segments {
		result, err := j.synthesize(ctx, segment)
		if err != nil {
			return "", fmt.Errorf("segment %d/%d: %w", i+1, len(segments), err)
		}

		segPath := j.cfg.Home.SegmentAudioPath(p.BookID, p.ID, i, j.cfg.Format)
		if err := os.WriteFile(segPath, result.Audio, 0o644); err != nil {
			return "", fmt.Errorf("write segment %d: %w", i, err)
		}
		segmentPaths = append(segmentPaths, segPath)

		j.mu.Lock()
		j.done = i + 1
		j.costUSD += result.CostUSD
		j.duration += result.DurationMS
		j.mu.Unlock()
	}

	j.setStage("concatenating")
	outPath := j.cfg.Home.ParagraphAudioPath(p.BookID, p.ID, j.cfg.Format)
	if err := audio.Concatenate(ctx, segmentPaths, outPath); err != nil {
		return "", err
	}

	j.setStage("done")
	return outPath, nil
}

// synthesize runs one TTS request with exponential backoff, honoring the
// provider's declared retry budget.
func (j *Job) synthesize(ctx context.Context, text string) (*providers.TTSResult, error) {
	var result *providers.TTSResult
	err := retry.Do(
		func() error {
			var genErr error
			result, genErr = j.cfg.Provider.Generate(ctx, &providers.TTSRequest{
				Text:   text,
				Voice:  j.cfg.Voice,
				Format: j.cfg.Format,
			})
			return genErr
		},
		retry.Context(ctx),
		retry.Attempts(uint(j.cfg.Provider.MaxRetries())),
		retry.Delay(j.cfg.Provider.RetryDelayBase()),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			j.cfg.Logger.Warn("tts attempt failed",
				"provider", j.cfg.Provider.Name(), "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return result, nil
}
