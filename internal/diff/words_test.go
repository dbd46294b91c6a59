package diff

import (
	"strings"
	"testing"
)

func TestWords_IdenticalInput(t *testing.T) {
	if got := Words("some text here", "some text here"); len(got) != 0 {
		t.Fatalf("expected no changes, got %#v", got)
	}
	if got := Words("", ""); len(got) != 0 {
		t.Fatalf("expected no changes for empty input, got %#v", got)
	}
}

func TestWords_SingleWordChanged(t *testing.T) {
	changes := Words("Hello, world!", "Hi, world!")
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %#v", changes)
	}

	ch := changes[0]
	if ch.Kind != ChangeModified {
		t.Fatalf("expected modified change, got %q", ch.Kind)
	}
	if ch.OriginalWord != "Hello," || ch.CorrectedWord != "Hi," {
		t.Fatalf("unexpected words: %#v", ch)
	}
	if ch.Position != 0 {
		t.Fatalf("expected position 0, got %d", ch.Position)
	}
	if ch.ID == "" {
		t.Fatalf("expected change to carry an ID")
	}
}

func TestWords_DuplicateWordsResolveInOrder(t *testing.T) {
	changes := Words("a b a", "a c a")
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %#v", changes)
	}
	ch := changes[0]
	if ch.OriginalWord != "b" || ch.CorrectedWord != "c" {
		t.Fatalf("unexpected words: %#v", ch)
	}
	if ch.Position != 1 {
		t.Fatalf("expected middle occurrence at position 1, got %d", ch.Position)
	}
}

func TestWords_PureRemoval(t *testing.T) {
	changes := Words("one two three", "one three")
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %#v", changes)
	}
	ch := changes[0]
	if ch.Kind != ChangeRemoved || ch.OriginalWord != "two" || ch.CorrectedWord != "" {
		t.Fatalf("unexpected removal entry: %#v", ch)
	}
	if ch.Position != 1 {
		t.Fatalf("expected position 1, got %d", ch.Position)
	}
}

func TestWords_PureAddition(t *testing.T) {
	changes := Words("one three", "one two three")
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %#v", changes)
	}
	ch := changes[0]
	if ch.Kind != ChangeAdded || ch.CorrectedWord != "two" || ch.OriginalWord != "" {
		t.Fatalf("unexpected addition entry: %#v", ch)
	}
}

func TestWords_AdjacentPairsMerge(t *testing.T) {
	changes := Words("the cat sat", "the dog stood")
	if len(changes) != 2 {
		t.Fatalf("expected 2 modified changes, got %#v", changes)
	}
	for _, ch := range changes {
		if ch.Kind != ChangeModified {
			t.Fatalf("expected modified change, got %#v", ch)
		}
	}
	if changes[0].OriginalWord != "cat" || changes[0].CorrectedWord != "dog" {
		t.Fatalf("unexpected first pair: %#v", changes[0])
	}
	if changes[1].OriginalWord != "sat" || changes[1].CorrectedWord != "stood" {
		t.Fatalf("unexpected second pair: %#v", changes[1])
	}
}

func TestWords_UnbalancedHunk(t *testing.T) {
	// Two words collapse into one: the first pairs up, the second is a removal.
	changes := Words("a b c d", "a x d")
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %#v", changes)
	}
	if changes[0].Kind != ChangeModified || changes[0].OriginalWord != "b" || changes[0].CorrectedWord != "x" {
		t.Fatalf("unexpected paired change: %#v", changes[0])
	}
	if changes[1].Kind != ChangeRemoved || changes[1].OriginalWord != "c" {
		t.Fatalf("unexpected leftover removal: %#v", changes[1])
	}
}

func TestWords_SentenceContext(t *testing.T) {
	changes := Words(
		"in the middle of a long winding sentence about nothing",
		"in the middle of a short winding sentence about nothing",
	)
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %#v", changes)
	}
	ctx := changes[0].SentenceContext
	if !strings.Contains(ctx, "short") {
		t.Fatalf("context should contain the corrected word, got %q", ctx)
	}
	if !strings.Contains(ctx, "of a") || !strings.Contains(ctx, "winding sentence") {
		t.Fatalf("context should contain surrounding words, got %q", ctx)
	}
}

func TestWords_FixTypeAssigned(t *testing.T) {
	changes := Words("she recieve the letter", "she receive the letter")
	if len(changes) != 1 {
		t.Fatalf("expected 1 change, got %#v", changes)
	}
	if changes[0].FixType != FixTypeDisambiguation {
		t.Fatalf("expected disambiguation fix type, got %q", changes[0].FixType)
	}
}
