// Package diff implements the word- and token-level text diffing used to
// track paragraph corrections. The word pass produces the change list that
// feeds the correction ledger and bulk suggestions; the token pass produces a
// renderable before/after stream that reconstructs both versions exactly.
package diff

import (
	"strings"

	"github.com/google/uuid"
)

// ChangeKind describes what happened to a word slot.
type ChangeKind string

const (
	// ChangeModified is a word replaced by another word at the same slot.
	ChangeModified ChangeKind = "modified"
	// ChangeRemoved is a word deleted with no replacement.
	ChangeRemoved ChangeKind = "removed"
	// ChangeAdded is a word inserted with no prior counterpart.
	ChangeAdded ChangeKind = "added"
)

// contextRadius is how many neighboring words are included in a sentence
// context snippet on each side of the changed word.
const contextRadius = 4

// WordChange is a single word-level difference between two versions of a
// paragraph. For ChangeModified both words are set; ChangeRemoved carries only
// OriginalWord and ChangeAdded only CorrectedWord.
type WordChange struct {
	ID              string     `json:"id"`
	Kind            ChangeKind `json:"kind"`
	OriginalWord    string     `json:"original_word,omitempty"`
	CorrectedWord   string     `json:"corrected_word,omitempty"`
	Position        int        `json:"position"`
	FixType         FixType    `json:"fix_type,omitempty"`
	SentenceContext string     `json:"sentence_context,omitempty"`
}

// Words compares two versions of a text at word granularity and returns the
// ordered change list. Words are maximal runs of non-whitespace. Adjacent
// removed/added words at the same slot are merged into a single modified
// entry; unpaired words surface as removed or added entries. Identical inputs
// yield an empty list.
func Words(original, current string) []WordChange {
	if original == current {
		return nil
	}

	aWords := strings.Fields(original)
	bWords := strings.Fields(current)
	script := editScript(aWords, bWords)

	var changes []WordChange
	var dels, inss []edit

	flush := func() {
		paired := len(dels)
		if len(inss) < paired {
			paired = len(inss)
		}
		for i := 0; i < paired; i++ {
			orig := aWords[dels[i].aIndex]
			corr := bWords[inss[i].bIndex]
			changes = append(changes, WordChange{
				ID:              uuid.NewString(),
				Kind:            ChangeModified,
				OriginalWord:    orig,
				CorrectedWord:   corr,
				Position:        inss[i].bIndex,
				FixType:         ClassifyFix(orig, corr),
				SentenceContext: wordContext(bWords, inss[i].bIndex),
			})
		}
		for _, d := range dels[paired:] {
			changes = append(changes, WordChange{
				ID:              uuid.NewString(),
				Kind:            ChangeRemoved,
				OriginalWord:    aWords[d.aIndex],
				Position:        d.aIndex,
				FixType:         FixTypeDefault,
				SentenceContext: wordContext(aWords, d.aIndex),
			})
		}
		for _, i := range inss[paired:] {
			changes = append(changes, WordChange{
				ID:              uuid.NewString(),
				Kind:            ChangeAdded,
				CorrectedWord:   bWords[i.bIndex],
				Position:        i.bIndex,
				FixType:         FixTypeDefault,
				SentenceContext: wordContext(bWords, i.bIndex),
			})
		}
		dels = dels[:0]
		inss = inss[:0]
	}

	for _, e := range script {
		switch e.op {
		case opEqual:
			flush()
		case opDelete:
			dels = append(dels, e)
		case opInsert:
			inss = append(inss, e)
		}
	}
	flush()

	return changes
}

// wordContext returns a short snippet of words around index idx.
func wordContext(words []string, idx int) string {
	if len(words) == 0 {
		return ""
	}
	lo := idx - contextRadius
	if lo < 0 {
		lo = 0
	}
	hi := idx + contextRadius + 1
	if hi > len(words) {
		hi = len(words)
	}
	return strings.Join(words[lo:hi], " ")
}
