// Package page_audio combines a page's per-paragraph audio files into one
// page-level file. It requires every paragraph on the page to have ready
// audio; it does not synthesize anything itself.
package page_audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackzampolin/lectern/internal/audio"
	"github.com/jackzampolin/lectern/internal/books"
	"github.com/jackzampolin/lectern/internal/home"
)

// JobType identifies page audio combination jobs.
const JobType = "page_audio"

// Config wires a page audio job.
type Config struct {
	PageID string
	Format string // default "mp3"

	Books  *books.Store
	Home   *home.Dir
	Logger *slog.Logger
}

// Job concatenates one page's paragraph audio.
type Job struct {
	cfg Config

	mu    sync.Mutex
	stage string
	total int
}

// New creates a page audio job.
func New(cfg Config) (*Job, error) {
	if cfg.PageID == "" {
		return nil, fmt.Errorf("page ID is required")
	}
	if cfg.Books == nil || cfg.Home == nil {
		return nil, fmt.Errorf("books store and home dir are required")
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

// Status reports combination progress.
func (j *Job) Status() map[string]string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return map[string]string{
		"stage":      j.stage,
		"paragraphs": fmt.Sprintf("%d", j.total),
	}
}

func (j *Job) setStage(stage string) {
	j.mu.Lock()
	j.stage = stage
	j.mu.Unlock()
}

// Execute combines the page's paragraph audio files. It fails without
// touching the page record if any paragraph lacks ready audio, so callers
// can generate the missing paragraphs and resubmit.
func (j *Job) Execute(ctx context.Context) error {
	page, err := j.cfg.Books.GetPage(ctx, j.cfg.PageID)
	if err != nil {
		return err
	}

	paragraphs, err := j.cfg.Books.ListPageParagraphs(ctx, page.ID)
	if err != nil {
		return err
	}
	if len(paragraphs) == 0 {
		return fmt.Errorf("page %s has no paragraphs", page.ID)
	}

	inputs := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		if p.AudioStatus != books.AudioReady || p.AudioPath == "" {
			return fmt.Errorf("paragraph %s audio is %s, generate it before combining the page",
				p.ID, p.AudioStatus)
		}
		inputs = append(inputs, p.AudioPath)
	}

	j.mu.Lock()
	j.total = len(inputs)
	j.stage = "concatenating"
	j.mu.Unlock()

	if err := j.cfg.Books.SetPageAudio(ctx, page.ID, page.AudioPath, books.AudioPending); err != nil {
		return err
	}

	outPath := j.cfg.Home.PageAudioPath(page.BookID, page.PageNumber, j.cfg.Format)
	if err := audio.Concatenate(ctx, inputs, outPath); err != nil {
		if statusErr := j.cfg.Books.SetPageAudio(ctx, page.ID, page.AudioPath, books.AudioFailed); statusErr != nil {
			j.cfg.Logger.Warn("failed to mark page audio failed",
				"page_id", page.ID, "error", statusErr)
		}
		return err
	}

	j.setStage("done")
	return j.cfg.Books.SetPageAudio(ctx, page.ID, outPath, books.AudioReady)
}
