package audio

import (
	"strings"
	"testing"
)

func TestSplitSentences_Basic(t *testing.T) {
	text := "First sentence. Second sentence! Third sentence? Fourth."
	got := SplitSentences(text, 0)
	if len(got) != 4 {
		t.Fatalf("expected 4 sentences, got %d: %#v", len(got), got)
	}
}

func TestSplitSentences_AbbreviationsAndDecimals(t *testing.T) {
	text := "Mr. Smith measured 3.14 meters. Dr. Jones agreed."
	got := SplitSentences(text, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %#v", len(got), got)
	}
}

func TestSplitSentences_Ellipsis(t *testing.T) {
	text := "Wait... really? Yes."
	got := SplitSentences(text, 0)
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d: %#v", len(got), got)
	}
	if got[0] != "Wait... really?" {
		t.Fatalf("unexpected first sentence: %q", got[0])
	}
}

func TestSplitSentences_OversizedFallback(t *testing.T) {
	parts := make([]string, 0, 500)
	for i := 0; i < 1200; i++ {
		parts = append(parts, "clause")
	}
	text := strings.Join(parts, ", ") + "."
	got := SplitSentences(text, 0)
	if len(got) < 2 {
		t.Fatalf("expected oversized sentence to split into multiple chunks, got %d", len(got))
	}
	for i, seg := range got {
		if len([]rune(seg)) > DefaultMaxSegmentChars {
			t.Fatalf("segment %d exceeds max chars: %d", i, len([]rune(seg)))
		}
	}
}

func TestSplitSentences_CustomLimit(t *testing.T) {
	text := "alpha, beta, gamma, delta, epsilon."
	got := SplitSentences(text, 12)
	if len(got) < 2 {
		t.Fatalf("expected the custom limit to force a split, got %#v", got)
	}
	for i, seg := range got {
		if len([]rune(seg)) > 12 {
			t.Fatalf("segment %d exceeds limit: %q", i, seg)
		}
	}
}

func TestSplitSentences_Empty(t *testing.T) {
	got := SplitSentences("   \n\t ", 0)
	if len(got) != 0 {
		t.Fatalf("expected no segments, got %#v", got)
	}
}
