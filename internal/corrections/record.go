// Package corrections persists the append-only history of word corrections
// and exposes corpus-wide queries over it: per-chain history, aggregation by
// repeated fix, and bulk "apply everywhere" suggestions.
package corrections

import (
	"strings"
	"time"

	"github.com/jackzampolin/lectern/internal/diff"
)

// AggregationKeySeparator joins a chain's root word with a corrected form to
// build the corpus-wide grouping key. The separator is not escaped: a word
// containing it would collide with another key. Words are whitespace-delimited
// so this is a documented limitation rather than an enforced invariant.
const AggregationKeySeparator = "|"

// Record is one accepted correction. Records form chains: all rows for a
// given (paragraph, root word) share an immutable RootWord, carry contiguous
// FixSequence values starting at 1, and exactly one row per chain (the one
// with the highest sequence) has IsLatestFix set.
type Record struct {
	ID              string       `json:"id"`
	BookID          string       `json:"book_id"`
	ParagraphID     string       `json:"paragraph_id"`
	RootWord        string       `json:"root_word"`
	PriorWord       string       `json:"prior_word"`
	CorrectedWord   string       `json:"corrected_word"`
	AggregationKey  string       `json:"aggregation_key"`
	SentenceContext string       `json:"sentence_context,omitempty"`
	FixType         diff.FixType `json:"fix_type"`
	FixSequence     int          `json:"fix_sequence"`
	IsLatestFix     bool         `json:"is_latest_fix"`
	Provider        string       `json:"provider,omitempty"`
	Voice           string       `json:"voice,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

// BuildAggregationKey derives the grouping key for a root word and a specific
// corrected form.
func BuildAggregationKey(rootWord, correctedWord string) string {
	return rootWord + AggregationKeySeparator + correctedWord
}

// SplitAggregationKey splits a key into its root and corrected words. A key
// without the separator is treated as opaque: it comes back whole as the root
// word with an empty corrected word, never an error.
func SplitAggregationKey(key string) (rootWord, correctedWord string) {
	idx := strings.Index(key, AggregationKeySeparator)
	if idx < 0 {
		return key, ""
	}
	return key[:idx], key[idx+len(AggregationKeySeparator):]
}
