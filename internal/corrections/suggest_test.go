package corrections_test

import (
	"context"
	"strings"
	"testing"

	"github.com/jackzampolin/lectern/internal/corrections"
	"github.com/jackzampolin/lectern/internal/diff"
)

type staticSource struct {
	paragraphs []corrections.SourceParagraph
}

func (s *staticSource) BookParagraphs(_ context.Context, _ string) ([]corrections.SourceParagraph, error) {
	return s.paragraphs, nil
}

func TestSuggestionFinder(t *testing.T) {
	source := &staticSource{paragraphs: []corrections.SourceParagraph{
		{ID: "edited", Content: "teh paragraph that was just fixed"},
		{ID: "p2", Content: "teh cat saw teh dog"},
		{ID: "p3", Content: "nothing to fix here"},
		{ID: "p4", Content: "another teh remains"},
	}}
	finder := corrections.NewSuggestionFinder(source, nil)

	changes := []diff.WordChange{
		{Kind: diff.ChangeModified, OriginalWord: "teh", CorrectedWord: "the", FixType: diff.FixTypeDisambiguation},
		// Duplicate of the same fix collapses into one suggestion.
		{Kind: diff.ChangeModified, OriginalWord: "teh", CorrectedWord: "the", FixType: diff.FixTypeDisambiguation},
		// Removed words never generate suggestions.
		{Kind: diff.ChangeRemoved, OriginalWord: "gone"},
	}

	suggestions, err := finder.Find(context.Background(), "book", "edited", changes)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(suggestions) != 1 {
		t.Fatalf("got %d suggestions, want 1: %#v", len(suggestions), suggestions)
	}

	s := suggestions[0]
	if s.OriginalWord != "teh" || s.CorrectedWord != "the" {
		t.Errorf("suggestion words = %q -> %q, want teh -> the", s.OriginalWord, s.CorrectedWord)
	}
	if s.Count != 3 {
		t.Errorf("total occurrences = %d, want 3", s.Count)
	}
	if len(s.Paragraphs) != 2 {
		t.Fatalf("got %d member paragraphs, want 2 (edited and clean ones excluded)", len(s.Paragraphs))
	}
	for _, p := range s.Paragraphs {
		if p.ID == "edited" {
			t.Error("edited paragraph must not be suggested")
		}
		if !strings.Contains(p.PreviewBefore, "teh") {
			t.Errorf("preview before %q does not show the original word", p.PreviewBefore)
		}
		if strings.Contains(p.PreviewAfter, "teh") || !strings.Contains(p.PreviewAfter, "the") {
			t.Errorf("preview after %q does not show the fix applied", p.PreviewAfter)
		}
	}
	if s.Paragraphs[0].Occurrences != 2 {
		t.Errorf("first member occurrences = %d, want 2", s.Paragraphs[0].Occurrences)
	}
}

func TestSuggestionFinderWholeWordsOnly(t *testing.T) {
	source := &staticSource{paragraphs: []corrections.SourceParagraph{
		{ID: "p1", Content: "theater is not a match, the is"},
	}}
	finder := corrections.NewSuggestionFinder(source, nil)

	changes := []diff.WordChange{
		{Kind: diff.ChangeModified, OriginalWord: "the", CorrectedWord: "thee", FixType: diff.FixTypeExpansion},
	}
	suggestions, err := finder.Find(context.Background(), "book", "other", changes)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(suggestions) != 1 || suggestions[0].Count != 1 {
		t.Fatalf("got %#v, want a single whole-word match", suggestions)
	}
}

func TestSuggestionFinderNoModifiedChanges(t *testing.T) {
	finder := corrections.NewSuggestionFinder(&staticSource{}, nil)

	suggestions, err := finder.Find(context.Background(), "book", "p", []diff.WordChange{
		{Kind: diff.ChangeAdded, CorrectedWord: "new"},
	})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if suggestions != nil {
		t.Fatalf("got %#v, want nil without modifications", suggestions)
	}
}
