// Package books stores the book/page/paragraph records an EPUB is parsed
// into, and implements the paragraph edit and revert operations over them.
package books

import "time"

// AudioStatus tracks where a paragraph's or page's audio stands.
type AudioStatus string

const (
	// AudioNone means no audio has been generated yet.
	AudioNone AudioStatus = "none"
	// AudioPending means a generation job is queued or running.
	AudioPending AudioStatus = "pending"
	// AudioReady means the audio file matches the current text.
	AudioReady AudioStatus = "ready"
	// AudioStale means the text changed after the audio was generated.
	AudioStale AudioStatus = "stale"
	// AudioFailed means the last generation attempt errored.
	AudioFailed AudioStatus = "failed"
)

// Book is one imported EPUB.
type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	Language  string    `json:"language,omitempty"`
	PageCount int       `json:"page_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Page groups a book's paragraphs and carries the combined page audio.
type Page struct {
	ID          string      `json:"id"`
	BookID      string      `json:"book_id"`
	PageNumber  int         `json:"page_number"`
	AudioPath   string      `json:"audio_path,omitempty"`
	AudioStatus AudioStatus `json:"audio_status"`
}

// Paragraph is the unit of editing and audio generation. Content is the
// current (possibly corrected) text; OriginalContent is the pristine text
// from the EPUB and never changes after import.
type Paragraph struct {
	ID              string      `json:"id"`
	PageID          string      `json:"page_id"`
	BookID          string      `json:"book_id"`
	Position        int         `json:"position"`
	Content         string      `json:"content"`
	OriginalContent string      `json:"original_content"`
	AudioPath       string      `json:"audio_path,omitempty"`
	AudioStatus     AudioStatus `json:"audio_status"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
