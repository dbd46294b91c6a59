package page_audio_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackzampolin/lectern/internal/books"
	"github.com/jackzampolin/lectern/internal/home"
	"github.com/jackzampolin/lectern/internal/jobs/page_audio"
	"github.com/jackzampolin/lectern/internal/store"
)

func newTestFixture(t *testing.T) (*books.Store, *home.Dir, *books.Page, []*books.Paragraph) {
	t.Helper()

	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := books.InitSchema(db); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}

	bookStore := books.NewStore(db)
	book, err := bookStore.CreateBook(context.Background(), books.CreateBookInput{
		Title: "Test Book",
		Pages: [][]string{{"First paragraph.", "Second paragraph."}},
	})
	if err != nil {
		t.Fatalf("failed to create book: %v", err)
	}

	pages, err := bookStore.ListPages(context.Background(), book.ID)
	if err != nil {
		t.Fatalf("failed to list pages: %v", err)
	}
	paragraphs, err := bookStore.ListPageParagraphs(context.Background(), pages[0].ID)
	if err != nil {
		t.Fatalf("failed to list paragraphs: %v", err)
	}

	dir, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create home dir: %v", err)
	}
	if err := dir.EnsureBookAudioDir(book.ID); err != nil {
		t.Fatalf("failed to create audio dir: %v", err)
	}
	return bookStore, dir, pages[0], paragraphs
}

func markReady(t *testing.T, s *books.Store, dir *home.Dir, p *books.Paragraph, content string) {
	t.Helper()
	path := dir.ParagraphAudioPath(p.BookID, p.ID, "mp3")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write paragraph audio: %v", err)
	}
	if err := s.SetParagraphAudio(context.Background(), p.ID, path, books.AudioReady); err != nil {
		t.Fatalf("failed to mark paragraph ready: %v", err)
	}
}

func TestJobRequiresAllParagraphAudio(t *testing.T) {
	bookStore, dir, page, paragraphs := newTestFixture(t)

	// Only the first paragraph has audio.
	markReady(t, bookStore, dir, paragraphs[0], "audio-0")

	job, err := page_audio.New(page_audio.Config{
		PageID: page.ID,
		Books:  bookStore,
		Home:   dir,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := job.Execute(context.Background()); err == nil {
		t.Fatal("expected an error when a paragraph lacks audio")
	}

	got, err := bookStore.GetPage(context.Background(), page.ID)
	if err != nil {
		t.Fatalf("GetPage failed: %v", err)
	}
	if got.AudioStatus != books.AudioNone {
		t.Fatalf("page record should be untouched, got %s", got.AudioStatus)
	}
}

func TestJobCombinesPageAudio(t *testing.T) {
	bookStore, dir, page, paragraphs := newTestFixture(t)
	for _, p := range paragraphs {
		markReady(t, bookStore, dir, p, "audio")
	}

	job, err := page_audio.New(page_audio.Config{
		PageID: page.ID,
		Books:  bookStore,
		Home:   dir,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	err = job.Execute(context.Background())
	got, getErr := bookStore.GetPage(context.Background(), page.ID)
	if getErr != nil {
		t.Fatalf("GetPage failed: %v", getErr)
	}

	if err != nil {
		// Combining two files shells out to ffmpeg; without it the job must
		// record the failure instead of leaving the page pending.
		if got.AudioStatus != books.AudioFailed {
			t.Fatalf("expected failed after concat error, got %s", got.AudioStatus)
		}
		t.Skipf("ffmpeg unavailable or rejected test fixtures: %v", err)
	}

	if got.AudioStatus != books.AudioReady {
		t.Fatalf("expected ready, got %s", got.AudioStatus)
	}
	want := filepath.Join(dir.BookAudioDir(page.BookID), "page_0001.mp3")
	if got.AudioPath != want {
		t.Fatalf("unexpected page audio path: %q", got.AudioPath)
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := page_audio.New(page_audio.Config{}); err == nil {
		t.Fatal("expected an error for missing page ID")
	}
	if _, err := page_audio.New(page_audio.Config{PageID: "pg1"}); err == nil {
		t.Fatal("expected an error for missing dependencies")
	}
}
