package corrections

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jackzampolin/lectern/internal/diff"
)

// ErrEmptyWord is returned when a correction is recorded without both words.
var ErrEmptyWord = errors.New("correction words must not be empty")

// InitSchema creates the corrections table. Call after the books schema so
// the paragraph foreign key resolves.
func InitSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS corrections (
			id TEXT PRIMARY KEY,
			book_id TEXT NOT NULL,
			paragraph_id TEXT NOT NULL REFERENCES paragraphs(id) ON DELETE CASCADE,
			root_word TEXT NOT NULL,
			prior_word TEXT NOT NULL,
			corrected_word TEXT NOT NULL,
			aggregation_key TEXT NOT NULL,
			sentence_context TEXT NOT NULL DEFAULT '',
			fix_type TEXT NOT NULL,
			fix_sequence INTEGER NOT NULL,
			is_latest_fix INTEGER NOT NULL DEFAULT 0,
			provider TEXT NOT NULL DEFAULT '',
			voice TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			UNIQUE (paragraph_id, root_word, fix_sequence)
		);
		CREATE INDEX IF NOT EXISTS idx_corrections_chain ON corrections(paragraph_id, root_word);
		CREATE INDEX IF NOT EXISTS idx_corrections_agg_key ON corrections(aggregation_key);
		CREATE INDEX IF NOT EXISTS idx_corrections_book ON corrections(book_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init corrections schema: %w", err)
	}
	return nil
}

// Store is the correction ledger. Every mutation runs as a single SQLite
// transaction so two concurrent corrections of the same word cannot both
// start a chain or reuse a sequence number.
type Store struct {
	db *sql.DB
}

// NewStore creates a ledger over the given database.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Input describes one correction to record. Word is the form currently in the
// paragraph text (the prior word of the new row); it is also how an existing
// chain is located.
type Input struct {
	BookID          string
	ParagraphID     string
	Word            string
	CorrectedWord   string
	SentenceContext string
	FixType         diff.FixType
	Provider        string
	Voice           string
}

// RecordCorrection appends a correction in its own transaction.
func (s *Store) RecordCorrection(ctx context.Context, in Input) (*Record, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin correction tx: %w", err)
	}
	rec, err := s.RecordCorrectionTx(ctx, tx, in)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit correction: %w", err)
	}
	return rec, nil
}

// RecordCorrectionTx appends a correction inside the caller's transaction.
// If a chain already exists for the word (matched by its current corrected
// form first, then by root word), the chain's latest row is superseded and
// the new row continues it; otherwise a new chain starts at sequence 1 with
// the word itself as root.
func (s *Store) RecordCorrectionTx(ctx context.Context, tx *sql.Tx, in Input) (*Record, error) {
	if in.Word == "" || in.CorrectedWord == "" {
		return nil, ErrEmptyWord
	}

	chain, err := findChain(ctx, tx, in.ParagraphID, in.Word)
	if err != nil {
		return nil, err
	}

	rec := &Record{
		ID:              uuid.NewString(),
		BookID:          in.BookID,
		ParagraphID:     in.ParagraphID,
		PriorWord:       in.Word,
		CorrectedWord:   in.CorrectedWord,
		SentenceContext: in.SentenceContext,
		FixType:         in.FixType,
		IsLatestFix:     true,
		Provider:        in.Provider,
		Voice:           in.Voice,
		CreatedAt:       time.Now().UTC(),
	}

	if chain == nil {
		rec.RootWord = in.Word
		rec.FixSequence = 1
	} else {
		rec.RootWord = chain.RootWord
		rec.FixSequence = chain.FixSequence + 1
		res, err := tx.ExecContext(ctx,
			`UPDATE corrections SET is_latest_fix = 0 WHERE id = ?`, chain.ID)
		if err != nil {
			return nil, fmt.Errorf("supersede correction %s: %w", chain.ID, err)
		}
		if n, _ := res.RowsAffected(); n != 1 {
			return nil, fmt.Errorf("supersede correction %s: latest row vanished", chain.ID)
		}
	}
	rec.AggregationKey = BuildAggregationKey(rec.RootWord, rec.CorrectedWord)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO corrections (
			id, book_id, paragraph_id, root_word, prior_word, corrected_word,
			aggregation_key, sentence_context, fix_type, fix_sequence,
			is_latest_fix, provider, voice, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?)`,
		rec.ID, rec.BookID, rec.ParagraphID, rec.RootWord, rec.PriorWord,
		rec.CorrectedWord, rec.AggregationKey, rec.SentenceContext,
		string(rec.FixType), rec.FixSequence, rec.Provider, rec.Voice,
		rec.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return nil, fmt.Errorf("insert correction: %w", err)
	}

	return rec, nil
}

// findChain locates the chain a word belongs to, returning its latest row.
// The word is matched as currently known: first against the latest corrected
// form of any chain in the paragraph, then against a chain's root word (the
// word was never corrected past its first form). Ties across chains go to the
// most recently extended one.
func findChain(ctx context.Context, tx *sql.Tx, paragraphID, word string) (*Record, error) {
	row := tx.QueryRowContext(ctx, selectColumns+`
		FROM corrections
		WHERE paragraph_id = ? AND is_latest_fix = 1 AND corrected_word = ?
		ORDER BY created_at DESC, fix_sequence DESC
		LIMIT 1`, paragraphID, word)
	rec, err := scanRecord(row)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find chain by corrected word: %w", err)
	}

	row = tx.QueryRowContext(ctx, selectColumns+`
		FROM corrections
		WHERE paragraph_id = ? AND is_latest_fix = 1 AND root_word = ?
		ORDER BY created_at DESC, fix_sequence DESC
		LIMIT 1`, paragraphID, word)
	rec, err = scanRecord(row)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find chain by root word: %w", err)
	}
	return nil, nil
}

// LatestFix returns the current correction for a chain, or nil if the word
// has no chain in this paragraph.
func (s *Store) LatestFix(ctx context.Context, paragraphID, rootWord string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+`
		FROM corrections
		WHERE paragraph_id = ? AND root_word = ? AND is_latest_fix = 1`,
		paragraphID, rootWord)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest fix: %w", err)
	}
	return rec, nil
}

// History returns the full chain for a word, ordered by fix sequence.
func (s *Store) History(ctx context.Context, paragraphID, rootWord string) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		FROM corrections
		WHERE paragraph_id = ? AND root_word = ?
		ORDER BY fix_sequence ASC`,
		paragraphID, rootWord)
	if err != nil {
		return nil, fmt.Errorf("correction history: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Clear removes every correction for a paragraph in its own transaction and
// returns the number of rows removed. Used by revert-to-original.
func (s *Store) Clear(ctx context.Context, paragraphID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin clear tx: %w", err)
	}
	count, err := s.ClearTx(ctx, tx, paragraphID)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit clear: %w", err)
	}
	return count, nil
}

// ClearTx removes every correction for a paragraph inside the caller's
// transaction.
func (s *Store) ClearTx(ctx context.Context, tx *sql.Tx, paragraphID string) (int, error) {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM corrections WHERE paragraph_id = ?`, paragraphID)
	if err != nil {
		return 0, fmt.Errorf("clear corrections: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// DeleteFilter selects corrections for maintenance deletion. Empty fields
// match everything; at least one must be set.
type DeleteFilter struct {
	BookID      string
	ParagraphID string
	FixType     diff.FixType
}

// ErrEmptyDeleteFilter guards against wiping the whole ledger by accident.
var ErrEmptyDeleteFilter = errors.New("delete filter must set at least one field")

// Delete removes corrections matching the filter and returns the count.
func (s *Store) Delete(ctx context.Context, f DeleteFilter) (int, error) {
	var conds []string
	var args []any
	if f.BookID != "" {
		conds = append(conds, "book_id = ?")
		args = append(args, f.BookID)
	}
	if f.ParagraphID != "" {
		conds = append(conds, "paragraph_id = ?")
		args = append(args, f.ParagraphID)
	}
	if f.FixType != "" {
		conds = append(conds, "fix_type = ?")
		args = append(args, string(f.FixType))
	}
	if len(conds) == 0 {
		return 0, ErrEmptyDeleteFilter
	}

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM corrections WHERE "+strings.Join(conds, " AND "), args...)
	if err != nil {
		return 0, fmt.Errorf("delete corrections: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

const selectColumns = `
	SELECT id, book_id, paragraph_id, root_word, prior_word, corrected_word,
	       aggregation_key, sentence_context, fix_type, fix_sequence,
	       is_latest_fix, provider, voice, created_at`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var fixType string
	var latest int
	var createdAt string
	if err := row.Scan(
		&rec.ID, &rec.BookID, &rec.ParagraphID, &rec.RootWord, &rec.PriorWord,
		&rec.CorrectedWord, &rec.AggregationKey, &rec.SentenceContext,
		&fixType, &rec.FixSequence, &latest, &rec.Provider, &rec.Voice,
		&createdAt,
	); err != nil {
		return nil, err
	}
	rec.FixType = diff.FixType(fixType)
	rec.IsLatestFix = latest != 0
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse correction timestamp %q: %w", createdAt, err)
	}
	rec.CreatedAt = ts
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]*Record, error) {
	var recs []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}
