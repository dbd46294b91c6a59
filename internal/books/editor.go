package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/lectern/internal/corrections"
	"github.com/jackzampolin/lectern/internal/diff"
)

// ErrNoOriginalContent is returned when a diff or revert needs the pristine
// text and the paragraph has none.
var ErrNoOriginalContent = errors.New("paragraph has no original content")

// Editor runs paragraph edits: diff against the prior text, persist the new
// content and any corrections atomically, then gather bulk-fix suggestions.
type Editor struct {
	db     *sql.DB
	store  *Store
	ledger *corrections.Store
	finder *corrections.SuggestionFinder
	logger *slog.Logger
}

// NewEditor wires an editor. finder may be nil to disable suggestions.
func NewEditor(db *sql.DB, store *Store, ledger *corrections.Store, finder *corrections.SuggestionFinder, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Editor{db: db, store: store, ledger: ledger, finder: finder, logger: logger}
}

// EditRequest is one paragraph edit. RecordCorrections controls whether
// word-level changes are written to the ledger; it is independent of revert,
// which is a separate operation entirely.
type EditRequest struct {
	ParagraphID       string
	Content           string
	RecordCorrections bool
	Provider          string
	Voice             string
}

// EditResult is what an accepted edit produces: the updated paragraph, the
// word-level changes, and best-effort suggestions for applying the same fixes
// elsewhere in the book.
type EditResult struct {
	Paragraph   *Paragraph                `json:"paragraph"`
	Changes     []diff.WordChange         `json:"changes"`
	Suggestions []*corrections.Suggestion `json:"suggestions,omitempty"`
}

// Edit applies new text to a paragraph. Identical content is a no-op with an
// empty change list. The content update and ledger rows commit together;
// suggestion gathering runs after the commit and its failure only logs.
func (e *Editor) Edit(ctx context.Context, req EditRequest) (*EditResult, error) {
	p, err := e.store.GetParagraph(ctx, req.ParagraphID)
	if err != nil {
		return nil, err
	}

	if p.Content == req.Content {
		return &EditResult{Paragraph: p}, nil
	}

	changes := diff.Words(p.Content, req.Content)

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin edit tx: %w", err)
	}
	defer tx.Rollback()

	if err := e.store.UpdateParagraphContentTx(ctx, tx, p.ID, req.Content); err != nil {
		return nil, err
	}

	if req.RecordCorrections {
		for _, ch := range changes {
			if ch.Kind != diff.ChangeModified {
				continue
			}
			if _, err := e.ledger.RecordCorrectionTx(ctx, tx, corrections.Input{
				BookID:          p.BookID,
				ParagraphID:     p.ID,
				Word:            ch.OriginalWord,
				CorrectedWord:   ch.CorrectedWord,
				SentenceContext: ch.SentenceContext,
				FixType:         ch.FixType,
				Provider:        req.Provider,
				Voice:           req.Voice,
			}); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit edit: %w", err)
	}

	result := &EditResult{Changes: changes}
	if result.Paragraph, err = e.store.GetParagraph(ctx, p.ID); err != nil {
		return nil, err
	}

	if e.finder != nil && req.RecordCorrections {
		suggestions, err := e.finder.Find(ctx, p.BookID, p.ID, changes)
		if err != nil {
			e.logger.Warn("bulk suggestion scan failed",
				"paragraph_id", p.ID, "error", err)
		} else {
			result.Suggestions = suggestions
		}
	}

	return result, nil
}

// RevertResult reports a revert: the restored paragraph and how many ledger
// rows its chains held.
type RevertResult struct {
	Paragraph          *Paragraph `json:"paragraph"`
	CorrectionsRemoved int        `json:"corrections_removed"`
}

// Revert restores a paragraph's pristine original content and deletes every
// correction chain for it, both in one transaction. Nothing is recorded in
// the ledger for the text change itself.
func (e *Editor) Revert(ctx context.Context, paragraphID string) (*RevertResult, error) {
	p, err := e.store.GetParagraph(ctx, paragraphID)
	if err != nil {
		return nil, err
	}
	if p.OriginalContent == "" {
		return nil, ErrNoOriginalContent
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin revert tx: %w", err)
	}
	defer tx.Rollback()

	if err := e.store.UpdateParagraphContentTx(ctx, tx, p.ID, p.OriginalContent); err != nil {
		return nil, err
	}
	removed, err := e.ledger.ClearTx(ctx, tx, p.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit revert: %w", err)
	}

	restored, err := e.store.GetParagraph(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return &RevertResult{Paragraph: restored, CorrectionsRemoved: removed}, nil
}

// Compare renders the token-level diff of a paragraph's current content
// against its pristine original.
func (e *Editor) Compare(ctx context.Context, paragraphID string) ([]diff.Token, error) {
	p, err := e.store.GetParagraph(ctx, paragraphID)
	if err != nil {
		return nil, err
	}
	if p.OriginalContent == "" {
		return nil, ErrNoOriginalContent
	}
	if p.OriginalContent == p.Content {
		return []diff.Token{}, nil
	}
	changes := diff.Words(p.OriginalContent, p.Content)
	return diff.Tokens(p.OriginalContent, p.Content, changes), nil
}
