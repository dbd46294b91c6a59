package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/jackzampolin/lectern/internal/books"
	"github.com/jackzampolin/lectern/internal/home"
	"github.com/jackzampolin/lectern/internal/server/endpoints"
)

// startTestServer runs a full server against a throwaway home directory and
// returns its base URL. The server is stopped during test cleanup.
func startTestServer(t *testing.T, port string) string {
	t.Helper()

	dir, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New failed: %v", err)
	}

	srv, err := New(Config{Host: "127.0.0.1", Port: port, Home: dir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start(ctx)
	}()

	baseURL := "http://127.0.0.1:" + port
	if err := waitForServer(baseURL, 10*time.Second); err != nil {
		cancel()
		t.Fatalf("server did not start: %v", err)
	}

	t.Cleanup(func() {
		cancel()
		select {
		case err := <-serverErr:
			if err != nil {
				t.Errorf("server exited with error: %v", err)
			}
		case <-time.After(10 * time.Second):
			t.Error("server did not shut down in time")
		}
	})
	return baseURL
}

func waitForServer(baseURL string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("server at %s never became healthy", baseURL)
}

func getJSON(t *testing.T, url string, out any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s status = %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func TestServerEndToEnd(t *testing.T) {
	baseURL := startTestServer(t, "14400")

	t.Run("ready", func(t *testing.T) {
		var health endpoints.HealthResponse
		getJSON(t, baseURL+"/ready", &health)
		if health.Status != "ok" || health.Database != "ok" {
			t.Fatalf("unexpected readiness: %#v", health)
		}
	})

	var book books.Book
	t.Run("create_book", func(t *testing.T) {
		body, _ := json.Marshal(endpoints.CreateBookRequest{
			Title: "The Test Book",
			Pages: [][]string{
				{"Teh cat sat on the mat.", "Teh same typo appears in this paragraph."},
			},
		})
		resp, err := http.Post(baseURL+"/api/books", "application/json", bytes.NewReader(body))
		if err != nil {
			t.Fatalf("POST /api/books failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create status = %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&book); err != nil {
			t.Fatalf("decode book: %v", err)
		}
		if book.PageCount != 1 {
			t.Fatalf("page count = %d, want 1", book.PageCount)
		}
	})

	var paragraphs []*books.Paragraph
	t.Run("get_page", func(t *testing.T) {
		var pagesResp endpoints.ListPagesResponse
		getJSON(t, baseURL+"/api/books/"+book.ID+"/pages", &pagesResp)
		if len(pagesResp.Pages) != 1 {
			t.Fatalf("expected 1 page, got %d", len(pagesResp.Pages))
		}

		var pageResp endpoints.PageResponse
		getJSON(t, baseURL+"/api/pages/"+pagesResp.Pages[0].ID, &pageResp)
		paragraphs = pageResp.Paragraphs
		if len(paragraphs) != 2 {
			t.Fatalf("expected 2 paragraphs, got %d", len(paragraphs))
		}
	})

	t.Run("edit_paragraph", func(t *testing.T) {
		body, _ := json.Marshal(endpoints.EditParagraphRequest{
			Content:           "The cat sat on the mat.",
			RecordCorrections: true,
		})
		req, _ := http.NewRequest(http.MethodPut,
			baseURL+"/api/paragraphs/"+paragraphs[0].ID, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("PUT paragraph failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("edit status = %d", resp.StatusCode)
		}

		var result books.EditResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			t.Fatalf("decode edit result: %v", err)
		}
		if len(result.Changes) != 1 {
			t.Fatalf("expected 1 change, got %#v", result.Changes)
		}
		// The second paragraph carries the same typo.
		if len(result.Suggestions) != 1 {
			t.Fatalf("expected 1 suggestion, got %#v", result.Suggestions)
		}
	})

	t.Run("diff", func(t *testing.T) {
		var resp endpoints.DiffResponse
		getJSON(t, baseURL+"/api/paragraphs/"+paragraphs[0].ID+"/diff", &resp)
		if len(resp.Tokens) == 0 {
			t.Fatal("expected diff tokens after edit")
		}
	})

	t.Run("aggregate", func(t *testing.T) {
		var resp endpoints.AggregateResponse
		getJSON(t, baseURL+"/api/corrections/aggregate", &resp)
		if len(resp.Groups) != 1 {
			t.Fatalf("expected 1 group, got %#v", resp.Groups)
		}
		if resp.Groups[0].RootWord != "Teh" || resp.Groups[0].CorrectedWord != "The" {
			t.Fatalf("unexpected group: %#v", resp.Groups[0])
		}
	})

	t.Run("history", func(t *testing.T) {
		var resp endpoints.HistoryResponse
		getJSON(t, baseURL+"/api/paragraphs/"+paragraphs[0].ID+"/corrections?word=Teh", &resp)
		if len(resp.History) != 1 {
			t.Fatalf("expected 1 history entry, got %#v", resp.History)
		}
	})

	t.Run("export", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/corrections/export")
		if err != nil {
			t.Fatalf("export failed: %v", err)
		}
		defer resp.Body.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(resp.Body); err != nil {
			t.Fatalf("read export: %v", err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 1 {
			t.Fatalf("expected 1 export line, got %d: %q", len(lines), buf.String())
		}
	})

	t.Run("revert", func(t *testing.T) {
		resp, err := http.Post(baseURL+"/api/paragraphs/"+paragraphs[0].ID+"/revert", "", nil)
		if err != nil {
			t.Fatalf("revert failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("revert status = %d", resp.StatusCode)
		}
		var result books.RevertResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			t.Fatalf("decode revert result: %v", err)
		}
		if result.CorrectionsRemoved != 1 {
			t.Fatalf("expected 1 correction removed, got %d", result.CorrectionsRemoved)
		}
	})

	t.Run("jobs_empty", func(t *testing.T) {
		var resp endpoints.ListJobsResponse
		getJSON(t, baseURL+"/api/jobs", &resp)
		if len(resp.Jobs) != 0 {
			t.Fatalf("expected no jobs, got %#v", resp.Jobs)
		}
	})

	t.Run("unknown_book_404", func(t *testing.T) {
		resp, err := http.Get(baseURL + "/api/books/nope")
		if err != nil {
			t.Fatalf("GET failed: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", resp.StatusCode)
		}
	})
}

func TestServerDoubleStart(t *testing.T) {
	dir, err := home.New(t.TempDir())
	if err != nil {
		t.Fatalf("home.New failed: %v", err)
	}
	srv, err := New(Config{Host: "127.0.0.1", Port: "14401", Home: dir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	serverErr := make(chan error, 1)
	go func() { serverErr <- srv.Start(ctx) }()

	if err := waitForServer("http://127.0.0.1:14401", 10*time.Second); err != nil {
		cancel()
		t.Fatalf("server did not start: %v", err)
	}
	if !srv.IsRunning() {
		t.Fatal("IsRunning() = false while serving")
	}
	if err := srv.Start(ctx); err == nil {
		t.Fatal("second Start should fail")
	}

	cancel()
	select {
	case err := <-serverErr:
		if err != nil {
			t.Fatalf("server exited with error: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down in time")
	}
	if srv.IsRunning() {
		t.Fatal("IsRunning() = true after shutdown")
	}
}
