package paragraph_audio_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackzampolin/lectern/internal/books"
	"github.com/jackzampolin/lectern/internal/home"
	"github.com/jackzampolin/lectern/internal/jobs/paragraph_audio"
	"github.com/jackzampolin/lectern/internal/providers"
	"github.com/jackzampolin/lectern/internal/store"
)

func newTestFixture(t *testing.T, content string) (*books.Store, *home.Dir, *books.Paragraph) {
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
		Pages: [][]string{{content}},
	})
	if err != nil {
		t.Fatalf("failed to create book: %v", err)
	}

	paragraphs, err := bookStore.ListBookParagraphs(context.Background(), book.ID)
	if err != nil {
		t.Fatalf("failed to list paragraphs: %v", err)
	}
	if len(paragraphs) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(paragraphs))
	}

	dir, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create home dir: %v", err)
	}
	return bookStore, dir, paragraphs[0]
}

func TestJobGeneratesParagraphAudio(t *testing.T) {
	bookStore, dir, p := newTestFixture(t, "A single short sentence.")

	mock := providers.NewMockTTS()
	mock.Audio = []byte("fake mp3 bytes")

	job, err := paragraph_audio.New(paragraph_audio.Config{
		ParagraphID: p.ID,
		Voice:       "onyx",
		Books:       bookStore,
		Provider:    mock,
		Home:        dir,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := job.Execute(context.Background()); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	got, err := bookStore.GetParagraph(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetParagraph failed: %v", err)
	}
	if got.AudioStatus != books.AudioReady {
		t.Fatalf("expected ready, got %s", got.AudioStatus)
	}
	if got.AudioPath == "" {
		t.Fatal("expected an audio path")
	}
	data, err := os.ReadFile(got.AudioPath)
	if err != nil {
		t.Fatalf("failed to read generated audio: %v", err)
	}
	if string(data) != "fake mp3 bytes" {
		t.Fatalf("unexpected audio content: %q", data)
	}

	status := job.Status()
	if status["stage"] != "done" || status["segments_done"] != "1" {
		t.Fatalf("unexpected final status: %#v", status)
	}
}

func TestJobRetriesTransientFailures(t *testing.T) {
	bookStore, dir, p := newTestFixture(t, "One sentence only.")

	mock := providers.NewMockTTS()
	mock.FailFirst = 1

	job, err := paragraph_audio.New(paragraph_audio.Config{
		ParagraphID: p.ID,
		Books:       bookStore,
		Provider:    mock,
		Home:        dir,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := job.Execute(context.Background()); err != nil {
		t.Fatalf("Execute should succeed on retry: %v", err)
	}
	if mock.RequestCount() != 2 {
		t.Fatalf("expected 2 attempts, got %d", mock.RequestCount())
	}

	got, err := bookStore.GetParagraph(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetParagraph failed: %v", err)
	}
	if got.AudioStatus != books.AudioReady {
		t.Fatalf("expected ready, got %s", got.AudioStatus)
	}
}

func TestJobMarksFailureOnProviderError(t *testing.T) {
	bookStore, dir, p := newTestFixture(t, "Doomed sentence.")

	mock := providers.NewMockTTS()
	mock.ShouldFail = true
	mock.Retries = 2

	job, err := paragraph_audio.New(paragraph_audio.Config{
		ParagraphID: p.ID,
		Books:       bookStore,
		Provider:    mock,
		Home:        dir,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if err := job.Execute(context.Background()); err == nil {
		t.Fatal("expected Execute to fail")
	}

	got, err := bookStore.GetParagraph(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("GetParagraph failed: %v", err)
	}
	if got.AudioStatus != books.AudioFailed {
		t.Fatalf("expected failed, got %s", got.AudioStatus)
	}
}

func TestJobUnknownParagraph(t *testing.T) {
	bookStore, dir, _ := newTestFixture(t, "Content.")

	job, err := paragraph_audio.New(paragraph_audio.Config{
		ParagraphID: "no-such-paragraph",
		Books:       bookStore,
		Provider:    providers.NewMockTTS(),
		Home:        dir,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := job.Execute(context.Background()); err == nil {
		t.Fatal("expected an error for an unknown paragraph")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := paragraph_audio.New(paragraph_audio.Config{}); err == nil {
		t.Fatal("expected an error for missing paragraph ID")
	}
	if _, err := paragraph_audio.New(paragraph_audio.Config{ParagraphID: "p1"}); err == nil {
		t.Fatal("expected an error for missing dependencies")
	}
}
