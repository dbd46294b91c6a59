package corrections

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// recordSchemaJSON validates one exported ledger line on import. Sequence and
// latest-flag invariants are preserved by exporting chains whole; the schema
// guards the field shapes.
const recordSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": [
		"id", "book_id", "paragraph_id", "root_word", "prior_word",
		"corrected_word", "aggregation_key", "fix_type", "fix_sequence",
		"is_latest_fix", "created_at"
	],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"book_id": {"type": "string", "minLength": 1},
		"paragraph_id": {"type": "string", "minLength": 1},
		"root_word": {"type": "string", "minLength": 1},
		"prior_word": {"type": "string", "minLength": 1},
		"corrected_word": {"type": "string", "minLength": 1},
		"aggregation_key": {"type": "string", "minLength": 1},
		"sentence_context": {"type": "string"},
		"fix_type": {"type": "string", "minLength": 1},
		"fix_sequence": {"type": "integer", "minimum": 1},
		"is_latest_fix": {"type": "boolean"},
		"provider": {"type": "string"},
		"voice": {"type": "string"},
		"created_at": {"type": "string", "format": "date-time"}
	}
}`

// ExportJSONL writes every ledger row as one JSON object per line, chains
// kept together and ordered by sequence so an import replays them verbatim.
// Returns the number of lines written.
func (s *Store) ExportJSONL(ctx context.Context, w io.Writer) (int, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+`
		FROM corrections
		ORDER BY paragraph_id ASC, root_word ASC, fix_sequence ASC`)
	if err != nil {
		return 0, fmt.Errorf("export corrections: %w", err)
	}
	defer rows.Close()

	recs, err := scanRecords(rows)
	if err != nil {
		return 0, err
	}

	enc := json.NewEncoder(w)
	for _, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return 0, fmt.Errorf("encode correction %s: %w", rec.ID, err)
		}
	}
	return len(recs), nil
}

// ImportJSONL reads JSONL produced by ExportJSONL, validates every line
// against the record schema, and inserts the rows in one transaction.
// Any invalid line or insert failure aborts the whole import.
func (s *Store) ImportJSONL(ctx context.Context, r io.Reader) (int, error) {
	schema, err := jsonschema.CompileString("corrections.json", recordSchemaJSON)
	if err != nil {
		return 0, fmt.Errorf("compile record schema: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import tx: %w", err)
	}
	defer tx.Rollback()

	count := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var raw any
		if err := json.Unmarshal(line, &raw); err != nil {
			return 0, fmt.Errorf("import line %d: invalid JSON: %w", count+1, err)
		}
		if err := schema.Validate(raw); err != nil {
			return 0, fmt.Errorf("import line %d: %w", count+1, err)
		}

		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			return 0, fmt.Errorf("import line %d: %w", count+1, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO corrections (
				id, book_id, paragraph_id, root_word, prior_word,
				corrected_word, aggregation_key, sentence_context, fix_type,
				fix_sequence, is_latest_fix, provider, voice, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.BookID, rec.ParagraphID, rec.RootWord, rec.PriorWord,
			rec.CorrectedWord, rec.AggregationKey, rec.SentenceContext,
			string(rec.FixType), rec.FixSequence, boolToInt(rec.IsLatestFix),
			rec.Provider, rec.Voice, rec.CreatedAt.Format(time.RFC3339Nano),
		); err != nil {
			return 0, fmt.Errorf("import correction %s: %w", rec.ID, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("read import stream: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	return count, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
