package diff

import (
	"unicode"
	"unicode/utf8"
)

// TokenType tags a rendered diff token.
type TokenType string

const (
	TokenUnchanged TokenType = "unchanged"
	TokenRemoved   TokenType = "removed"
	TokenAdded     TokenType = "added"
	TokenModified  TokenType = "modified"
)

// Token is one element of the rendered diff stream. StartPos/EndPos are rune
// offsets into the concatenation of all emitted token texts, contiguous and
// monotonically increasing. For TokenModified, Text is the corrected form and
// OriginalText the word it replaced.
type Token struct {
	Type         TokenType `json:"type"`
	Text         string    `json:"text"`
	StartPos     int       `json:"start_pos"`
	EndPos       int       `json:"end_pos"`
	OriginalText string    `json:"original_text,omitempty"`
	FixType      FixType   `json:"fix_type,omitempty"`
	ChangeID     string    `json:"change_id,omitempty"`
}

// Tokens renders the difference between two versions of a text as a typed
// token stream. Tokens are maximal runs of non-whitespace or whitespace;
// whitespace is preserved as its own tokens so that concatenating the
// unchanged+removed tokens reproduces original exactly, and the
// unchanged+modified+added tokens reproduce current exactly. Token text is
// treated as opaque, so any Unicode content (combining marks included) round
// trips unharmed.
//
// changes is the word-level change list for the same pair of texts; removed
// and added tokens that correspond to a tracked change are annotated with its
// fix type and ID. Identical inputs return an empty stream without diffing.
func Tokens(original, current string, changes []WordChange) []Token {
	if original == current {
		return nil
	}

	a := splitTokens(original)
	b := splitTokens(current)
	script := editScript(a, b)

	removedQueue := changeQueue(changes, true)
	addedQueue := changeQueue(changes, false)

	var out []Token
	pos := 0
	emit := func(t Token) {
		t.StartPos = pos
		pos += utf8.RuneCountInString(t.Text)
		t.EndPos = pos
		out = append(out, t)
	}

	for _, e := range script {
		switch e.op {
		case opEqual:
			emit(Token{Type: TokenUnchanged, Text: a[e.aIndex]})
		case opDelete:
			tok := Token{Type: TokenRemoved, Text: a[e.aIndex]}
			if ch := removedQueue.pop(a[e.aIndex]); ch != nil {
				tok.ChangeID = ch.ID
				tok.FixType = ch.FixType
			}
			emit(tok)
		case opInsert:
			tok := Token{Type: TokenAdded, Text: b[e.bIndex]}
			if ch := addedQueue.pop(b[e.bIndex]); ch != nil {
				tok.Type = TokenModified
				tok.OriginalText = ch.OriginalWord
				tok.FixType = ch.FixType
				tok.ChangeID = ch.ID
			}
			emit(tok)
		}
	}

	return out
}

// splitTokens splits s into maximal runs of whitespace and non-whitespace,
// discarding nothing.
func splitTokens(s string) []string {
	var tokens []string
	start := 0
	inSpace := false
	for i, r := range s {
		isSpace := unicode.IsSpace(r)
		if i == 0 {
			inSpace = isSpace
			continue
		}
		if isSpace != inSpace {
			tokens = append(tokens, s[start:i])
			start = i
			inSpace = isSpace
		}
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

// wordQueue hands out tracked changes for a given word in document order,
// each change at most once per side.
type wordQueue map[string][]*WordChange

func changeQueue(changes []WordChange, byOriginal bool) wordQueue {
	q := make(wordQueue)
	for i := range changes {
		ch := &changes[i]
		if ch.Kind != ChangeModified {
			continue
		}
		key := ch.CorrectedWord
		if byOriginal {
			key = ch.OriginalWord
		}
		q[key] = append(q[key], ch)
	}
	return q
}

func (q wordQueue) pop(word string) *WordChange {
	queue := q[word]
	if len(queue) == 0 {
		return nil
	}
	ch := queue[0]
	q[word] = queue[1:]
	return ch
}
