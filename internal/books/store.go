package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/lectern/internal/corrections"
)

// Sentinel errors surfaced to the HTTP layer.
var (
	ErrBookNotFound      = errors.New("book not found")
	ErrPageNotFound      = errors.New("page not found")
	ErrParagraphNotFound = errors.New("paragraph not found")
)

// InitSchema creates the book, page, and paragraph tables.
func InitSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS books (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			author TEXT NOT NULL DEFAULT '',
			language TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS pages (
			id TEXT PRIMARY KEY,
			book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
			page_number INTEGER NOT NULL,
			audio_path TEXT NOT NULL DEFAULT '',
			audio_status TEXT NOT NULL DEFAULT 'none'
		);
		CREATE INDEX IF NOT EXISTS idx_pages_book ON pages(book_id, page_number);

		CREATE TABLE IF NOT EXISTS paragraphs (
			id TEXT PRIMARY KEY,
			page_id TEXT NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
			book_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			content TEXT NOT NULL,
			original_content TEXT NOT NULL,
			audio_path TEXT NOT NULL DEFAULT '',
			audio_status TEXT NOT NULL DEFAULT 'none',
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_paragraphs_page ON paragraphs(page_id, position);
		CREATE INDEX IF NOT EXISTS idx_paragraphs_book ON paragraphs(book_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init books schema: %w", err)
	}
	return nil
}

// Store provides CRUD over books, pages, and paragraphs.
type Store struct {
	db *sql.DB
}

// NewStore creates a book store over the given database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateBookInput is a pre-parsed book: one slice of paragraph texts per
// page, in reading order. EPUB parsing happens upstream.
type CreateBookInput struct {
	Title    string
	Author   string
	Language string
	Pages    [][]string
}

// CreateBook inserts a book with its pages and paragraphs in one transaction.
func (s *Store) CreateBook(ctx context.Context, in CreateBookInput) (*Book, error) {
	if in.Title == "" {
		return nil, errors.New("book title is required")
	}

	now := time.Now().UTC()
	book := &Book{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Author:    in.Author,
		Language:  in.Language,
		PageCount: len(in.Pages),
		CreatedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin create book tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO books (id, title, author, language, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		book.ID, book.Title, book.Author, book.Language,
		now.Format(time.RFC3339Nano),
	); err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}

	for pageIdx, paragraphs := range in.Pages {
		pageID := uuid.NewString()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO pages (id, book_id, page_number)
			VALUES (?, ?, ?)`,
			pageID, book.ID, pageIdx+1,
		); err != nil {
			return nil, fmt.Errorf("insert page %d: %w", pageIdx+1, err)
		}

		for pos, content := range paragraphs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO paragraphs (
					id, page_id, book_id, position, content,
					original_content, updated_at
				) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				uuid.NewString(), pageID, book.ID, pos, content, content,
				now.Format(time.RFC3339Nano),
			); err != nil {
				return nil, fmt.Errorf("insert paragraph %d/%d: %w", pageIdx+1, pos, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create book: %w", err)
	}
	return book, nil
}

// GetBook returns one book by ID.
func (s *Store) GetBook(ctx context.Context, bookID string) (*Book, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT b.id, b.title, b.author, b.language, b.created_at,
		       (SELECT COUNT(*) FROM pages WHERE book_id = b.id)
		FROM books b WHERE b.id = ?`, bookID)

	var book Book
	var createdAt string
	if err := row.Scan(&book.ID, &book.Title, &book.Author, &book.Language,
		&createdAt, &book.PageCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse book timestamp: %w", err)
	}
	book.CreatedAt = ts
	return &book, nil
}

// ListBooks returns all books, newest first.
func (s *Store) ListBooks(ctx context.Context) ([]*Book, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.id, b.title, b.author, b.language, b.created_at,
		       (SELECT COUNT(*) FROM pages WHERE book_id = b.id)
		FROM books b ORDER BY b.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var out []*Book
	for rows.Next() {
		var book Book
		var createdAt string
		if err := rows.Scan(&book.ID, &book.Title, &book.Author,
			&book.Language, &createdAt, &book.PageCount); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse book timestamp: %w", err)
		}
		book.CreatedAt = ts
		out = append(out, &book)
	}
	return out, rows.Err()
}

// DeleteBook removes a book; pages, paragraphs, and corrections cascade.
func (s *Store) DeleteBook(ctx context.Context, bookID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, bookID)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookNotFound
	}
	return nil
}

// ListPages returns a book's pages in order.
func (s *Store) ListPages(ctx context.Context, bookID string) ([]*Page, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, page_number, audio_path, audio_status
		FROM pages WHERE book_id = ? ORDER BY page_number ASC`, bookID)
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	defer rows.Close()

	var out []*Page
	for rows.Next() {
		var p Page
		var status string
		if err := rows.Scan(&p.ID, &p.BookID, &p.PageNumber, &p.AudioPath, &status); err != nil {
			return nil, fmt.Errorf("scan page: %w", err)
		}
		p.AudioStatus = AudioStatus(status)
		out = append(out, &p)
	}
	return out, rows.Err()
}

// GetPage returns one page by ID.
func (s *Store) GetPage(ctx context.Context, pageID string) (*Page, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, book_id, page_number, audio_path, audio_status
		FROM pages WHERE id = ?`, pageID)

	var p Page
	var status string
	if err := row.Scan(&p.ID, &p.BookID, &p.PageNumber, &p.AudioPath, &status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("get page: %w", err)
	}
	p.AudioStatus = AudioStatus(status)
	return &p, nil
}

const paragraphColumns = `
	SELECT id, page_id, book_id, position, content, original_content,
	       audio_path, audio_status, updated_at`

// GetParagraph returns one paragraph by ID.
func (s *Store) GetParagraph(ctx context.Context, paragraphID string) (*Paragraph, error) {
	row := s.db.QueryRowContext(ctx,
		paragraphColumns+` FROM paragraphs WHERE id = ?`, paragraphID)
	p, err := scanParagraph(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrParagraphNotFound
	}
	return p, err
}

// ListPageParagraphs returns a page's paragraphs in reading order.
func (s *Store) ListPageParagraphs(ctx context.Context, pageID string) ([]*Paragraph, error) {
	rows, err := s.db.QueryContext(ctx,
		paragraphColumns+` FROM paragraphs WHERE page_id = ? ORDER BY position ASC`, pageID)
	if err != nil {
		return nil, fmt.Errorf("list page paragraphs: %w", err)
	}
	defer rows.Close()
	return scanParagraphs(rows)
}

// ListBookParagraphs returns every paragraph of a book in reading order.
func (s *Store) ListBookParagraphs(ctx context.Context, bookID string) ([]*Paragraph, error) {
	rows, err := s.db.QueryContext(ctx, paragraphColumns+`
		FROM paragraphs p WHERE book_id = ?
		ORDER BY (SELECT page_number FROM pages WHERE id = p.page_id) ASC,
		         position ASC`, bookID)
	if err != nil {
		return nil, fmt.Errorf("list book paragraphs: %w", err)
	}
	defer rows.Close()
	return scanParagraphs(rows)
}

// UpdateParagraphContentTx rewrites a paragraph's text inside the caller's
// transaction and marks any existing audio stale.
func (s *Store) UpdateParagraphContentTx(ctx context.Context, tx *sql.Tx, paragraphID, content string) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE paragraphs
		SET content = ?,
		    audio_status = CASE WHEN audio_status = 'none' THEN 'none' ELSE 'stale' END,
		    updated_at = ?
		WHERE id = ?`,
		content, time.Now().UTC().Format(time.RFC3339Nano), paragraphID)
	if err != nil {
		return fmt.Errorf("update paragraph content: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrParagraphNotFound
	}
	return nil
}

// SetParagraphAudio records the outcome of an audio generation job.
func (s *Store) SetParagraphAudio(ctx context.Context, paragraphID, audioPath string, status AudioStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE paragraphs SET audio_path = ?, audio_status = ? WHERE id = ?`,
		audioPath, string(status), paragraphID)
	if err != nil {
		return fmt.Errorf("set paragraph audio: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrParagraphNotFound
	}
	return nil
}

// SetPageAudio records the outcome of a page combination job.
func (s *Store) SetPageAudio(ctx context.Context, pageID, audioPath string, status AudioStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE pages SET audio_path = ?, audio_status = ? WHERE id = ?`,
		audioPath, string(status), pageID)
	if err != nil {
		return fmt.Errorf("set page audio: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPageNotFound
	}
	return nil
}

// BookParagraphs implements corrections.ParagraphSource so the suggestion
// finder can scan a book without depending on this package.
func (s *Store) BookParagraphs(ctx context.Context, bookID string) ([]corrections.SourceParagraph, error) {
	paragraphs, err := s.ListBookParagraphs(ctx, bookID)
	if err != nil {
		return nil, err
	}
	out := make([]corrections.SourceParagraph, len(paragraphs))
	for i, p := range paragraphs {
		out[i] = corrections.SourceParagraph{ID: p.ID, Content: p.Content}
	}
	return out, nil
}

func scanParagraph(row interface{ Scan(...any) error }) (*Paragraph, error) {
	var p Paragraph
	var status, updatedAt string
	if err := row.Scan(&p.ID, &p.PageID, &p.BookID, &p.Position, &p.Content,
		&p.OriginalContent, &p.AudioPath, &status, &updatedAt); err != nil {
		return nil, err
	}
	p.AudioStatus = AudioStatus(status)
	ts, err := time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse paragraph timestamp: %w", err)
	}
	p.UpdatedAt = ts
	return &p, nil
}

func scanParagraphs(rows *sql.Rows) ([]*Paragraph, error) {
	var out []*Paragraph
	for rows.Next() {
		p, err := scanParagraph(rows)
		if err != nil {
			return nil, fmt.Errorf("scan paragraph: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
