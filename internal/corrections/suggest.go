package corrections

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/jackzampolin/lectern/internal/diff"
)

// previewRadius is how many words surround a matched occurrence in a
// suggestion preview.
const previewRadius = 5

// SourceParagraph is the minimal paragraph view the suggestion scan needs.
type SourceParagraph struct {
	ID      string
	Content string
}

// ParagraphSource lists a book's paragraphs for scanning. books.Store
// satisfies this through a small adapter in the editor.
type ParagraphSource interface {
	BookParagraphs(ctx context.Context, bookID string) ([]SourceParagraph, error)
}

// ParagraphSuggestion is one paragraph still containing the pre-correction
// word, with a preview of the text before and after applying the fix.
type ParagraphSuggestion struct {
	ID            string `json:"id"`
	PreviewBefore string `json:"preview_before"`
	PreviewAfter  string `json:"preview_after"`
	Occurrences   int    `json:"occurrences"`
}

// Suggestion proposes applying an accepted correction to the rest of a book.
// Count sums the member paragraphs' occurrences; the top-level preview comes
// from the first member.
type Suggestion struct {
	ID            string                `json:"id"`
	OriginalWord  string                `json:"original_word"`
	CorrectedWord string                `json:"corrected_word"`
	FixType       diff.FixType          `json:"fix_type"`
	Count         int                   `json:"count"`
	PreviewBefore string                `json:"preview_before"`
	PreviewAfter  string                `json:"preview_after"`
	Paragraphs    []ParagraphSuggestion `json:"paragraphs"`
}

// SuggestionFinder scans a book for uncorrected occurrences of words that
// were just corrected elsewhere. It is read-only and best-effort: callers
// log its errors and carry on with the edit that triggered it.
type SuggestionFinder struct {
	source ParagraphSource
	logger *slog.Logger
}

// NewSuggestionFinder creates a finder over the given paragraph source.
func NewSuggestionFinder(source ParagraphSource, logger *slog.Logger) *SuggestionFinder {
	if logger == nil {
		logger = slog.Default()
	}
	return &SuggestionFinder{source: source, logger: logger}
}

// Find builds bulk-fix suggestions for the word-level changes just accepted
// in one paragraph. Every other paragraph of the book is scanned for whole
// word occurrences of each change's original word; paragraphs with none are
// omitted, and results are grouped by (original, corrected, fix type).
func (f *SuggestionFinder) Find(ctx context.Context, bookID, editedParagraphID string, changes []diff.WordChange) ([]*Suggestion, error) {
	type pair struct {
		original, corrected string
		fixType             diff.FixType
	}

	var pairs []pair
	seen := make(map[pair]bool)
	for _, ch := range changes {
		if ch.Kind != diff.ChangeModified {
			continue
		}
		p := pair{original: ch.OriginalWord, corrected: ch.CorrectedWord, fixType: ch.FixType}
		if seen[p] {
			continue
		}
		seen[p] = true
		pairs = append(pairs, p)
	}
	if len(pairs) == 0 {
		return nil, nil
	}

	paragraphs, err := f.source.BookParagraphs(ctx, bookID)
	if err != nil {
		return nil, err
	}

	var suggestions []*Suggestion
	for _, p := range pairs {
		var members []ParagraphSuggestion
		total := 0
		for _, para := range paragraphs {
			if para.ID == editedParagraphID {
				continue
			}
			count, before, after := matchParagraph(para.Content, p.original, p.corrected)
			if count == 0 {
				continue
			}
			members = append(members, ParagraphSuggestion{
				ID:            para.ID,
				PreviewBefore: before,
				PreviewAfter:  after,
				Occurrences:   count,
			})
			total += count
		}
		if len(members) == 0 {
			continue
		}
		suggestions = append(suggestions, &Suggestion{
			ID:            uuid.NewString(),
			OriginalWord:  p.original,
			CorrectedWord: p.corrected,
			FixType:       p.fixType,
			Count:         total,
			PreviewBefore: members[0].PreviewBefore,
			PreviewAfter:  members[0].PreviewAfter,
			Paragraphs:    members,
		})
	}
	return suggestions, nil
}

// matchParagraph counts whole-word occurrences of word in content and builds
// before/after previews around the first one.
func matchParagraph(content, word, replacement string) (count int, before, after string) {
	words := strings.Fields(content)
	first := -1
	for i, w := range words {
		if w == word {
			count++
			if first < 0 {
				first = i
			}
		}
	}
	if count == 0 {
		return 0, "", ""
	}

	lo := first - previewRadius
	if lo < 0 {
		lo = 0
	}
	hi := first + previewRadius + 1
	if hi > len(words) {
		hi = len(words)
	}

	window := make([]string, hi-lo)
	copy(window, words[lo:hi])
	before = strings.Join(window, " ")
	for i, w := range window {
		if w == word {
			window[i] = replacement
		}
	}
	after = strings.Join(window, " ")
	return count, before, after
}
