package corrections

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/jackzampolin/lectern/internal/diff"
)

// UnknownBookTitle is substituted when an aggregation row's owning book no
// longer exists. Location fields stay zero in the same case.
const UnknownBookTitle = "Unknown Book"

// Query provides read-only corpus-wide views over the correction ledger.
type Query struct {
	db *sql.DB
}

// NewQuery creates a query helper over the given database.
func NewQuery(db *sql.DB) *Query {
	return &Query{db: db}
}

// GroupFilter narrows ByAggregationKey results. MinOccurrences below zero is
// treated as zero. Limit semantics: negative means no limit, zero returns an
// empty result, and a limit larger than the group count returns all groups.
type GroupFilter struct {
	MinOccurrences int
	Limit          int
}

// Group is all corrections sharing one aggregation key, across paragraphs and
// fix types.
type Group struct {
	AggregationKey   string    `json:"aggregation_key"`
	RootWord         string    `json:"root_word"`
	CorrectedWord    string    `json:"corrected_word"`
	FixCount         int       `json:"fix_count"`
	Corrections      []*Record `json:"corrections"`
	LatestCorrection time.Time `json:"latest_correction"`
}

// ByAggregationKey groups every ledger row by aggregation key. Groups are
// ordered by fix count descending, then key, so the most recurrent fixes come
// first.
func (q *Query) ByAggregationKey(ctx context.Context, f GroupFilter) ([]*Group, error) {
	if f.Limit == 0 {
		return []*Group{}, nil
	}
	minOccurrences := f.MinOccurrences
	if minOccurrences < 0 {
		minOccurrences = 0
	}

	rows, err := q.db.QueryContext(ctx, selectColumns+`
		FROM corrections
		ORDER BY aggregation_key ASC, fix_sequence ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query corrections: %w", err)
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*Group)
	var order []string
	for _, rec := range recs {
		g, ok := byKey[rec.AggregationKey]
		if !ok {
			root, corrected := SplitAggregationKey(rec.AggregationKey)
			g = &Group{
				AggregationKey: rec.AggregationKey,
				RootWord:       root,
				CorrectedWord:  corrected,
			}
			byKey[rec.AggregationKey] = g
			order = append(order, rec.AggregationKey)
		}
		g.Corrections = append(g.Corrections, rec)
		g.FixCount++
		if rec.CreatedAt.After(g.LatestCorrection) {
			g.LatestCorrection = rec.CreatedAt
		}
	}

	groups := make([]*Group, 0, len(order))
	for _, key := range order {
		g := byKey[key]
		if g.FixCount < minOccurrences {
			continue
		}
		groups = append(groups, g)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].FixCount != groups[j].FixCount {
			return groups[i].FixCount > groups[j].FixCount
		}
		return groups[i].AggregationKey < groups[j].AggregationKey
	})

	if f.Limit > 0 && len(groups) > f.Limit {
		groups = groups[:f.Limit]
	}
	return groups, nil
}

// KeyCorrection is a ledger row enriched with its owning book and paragraph
// location for history browsing.
type KeyCorrection struct {
	Record            *Record `json:"correction"`
	BookTitle         string  `json:"book_title"`
	PageNumber        int     `json:"page_number"`
	ParagraphPosition int     `json:"paragraph_position"`
}

// CorrectionsForKey returns every row sharing an aggregation key, most recent
// first. Rows whose book or paragraph has since disappeared are kept with
// placeholder context rather than dropped. Keys are matched literally, so a
// malformed key simply matches nothing.
func (q *Query) CorrectionsForKey(ctx context.Context, key string) ([]*KeyCorrection, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT c.id, c.book_id, c.paragraph_id, c.root_word, c.prior_word,
		       c.corrected_word, c.aggregation_key, c.sentence_context,
		       c.fix_type, c.fix_sequence, c.is_latest_fix, c.provider,
		       c.voice, c.created_at,
		       COALESCE(b.title, ''), COALESCE(pg.page_number, 0),
		       COALESCE(p.position, 0)
		FROM corrections c
		LEFT JOIN books b ON b.id = c.book_id
		LEFT JOIN paragraphs p ON p.id = c.paragraph_id
		LEFT JOIN pages pg ON pg.id = p.page_id
		WHERE c.aggregation_key = ?
		ORDER BY c.created_at DESC, c.fix_sequence DESC`, key)
	if err != nil {
		return nil, fmt.Errorf("corrections for key: %w", err)
	}
	defer rows.Close()

	var out []*KeyCorrection
	for rows.Next() {
		var rec Record
		var fixType string
		var latest int
		var createdAt string
		kc := &KeyCorrection{Record: &rec}
		if err := rows.Scan(
			&rec.ID, &rec.BookID, &rec.ParagraphID, &rec.RootWord,
			&rec.PriorWord, &rec.CorrectedWord, &rec.AggregationKey,
			&rec.SentenceContext, &fixType, &rec.FixSequence, &latest,
			&rec.Provider, &rec.Voice, &createdAt,
			&kc.BookTitle, &kc.PageNumber, &kc.ParagraphPosition,
		); err != nil {
			return nil, fmt.Errorf("scan key correction: %w", err)
		}
		rec.FixType = diff.FixType(fixType)
		rec.IsLatestFix = latest != 0
		ts, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse correction timestamp %q: %w", createdAt, err)
		}
		rec.CreatedAt = ts
		if kc.BookTitle == "" {
			kc.BookTitle = UnknownBookTitle
		}
		out = append(out, kc)
	}
	return out, rows.Err()
}
