package diff

import (
	"strings"
	"unicode"

	"github.com/antzucaro/matchr"
)

// FixType classifies what kind of correction turned one word into another.
type FixType string

const (
	// FixTypeVowelization covers changes to combining marks only (e.g. Arabic
	// tashkeel added or corrected on an otherwise identical skeleton).
	FixTypeVowelization FixType = "vowelization"
	// FixTypePunctuation covers words that differ only by punctuation characters.
	FixTypePunctuation FixType = "punctuation"
	// FixTypeExpansion covers one word being extended into a longer form that
	// still contains it (abbreviation expansion, added prefix or suffix).
	FixTypeExpansion FixType = "expansion"
	// FixTypeDisambiguation covers near-miss respellings of the same word.
	FixTypeDisambiguation FixType = "disambiguation"
	// FixTypeDefault is the catch-all bucket.
	FixTypeDefault FixType = "default"
)

// disambiguationMaxDistance is the Levenshtein cutoff separating a respelling
// of the same word from an outright replacement.
const disambiguationMaxDistance = 2

// ClassifyFix assigns exactly one FixType to an original/corrected word pair.
// The comparison is deterministic and total: every pair gets a tag, and the
// same pair always gets the same tag.
func ClassifyFix(original, corrected string) FixType {
	if stripCombiningMarks(original) == stripCombiningMarks(corrected) && original != corrected {
		return FixTypeVowelization
	}
	if stripPunctuation(original) == stripPunctuation(corrected) {
		return FixTypePunctuation
	}
	if isExpansion(original, corrected) {
		return FixTypeExpansion
	}
	if matchr.Levenshtein(original, corrected) <= disambiguationMaxDistance {
		return FixTypeDisambiguation
	}
	return FixTypeDefault
}

// stripCombiningMarks removes nonspacing marks, leaving the consonant skeleton.
func stripCombiningMarks(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func stripPunctuation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPunct(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isExpansion reports whether one word is a case-insensitive superset of the
// other, combining marks ignored on both sides.
func isExpansion(original, corrected string) bool {
	a := strings.ToLower(stripCombiningMarks(original))
	b := strings.ToLower(stripCombiningMarks(corrected))
	if a == b || a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
