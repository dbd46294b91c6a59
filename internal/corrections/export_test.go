package corrections_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/jackzampolin/lectern/internal/corrections"
	"github.com/jackzampolin/lectern/internal/diff"
)

func TestExportImportRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	bookID, paraIDs := seedBook(t, db, "teh word")
	ledger := corrections.NewStore(db)

	// A two-step chain so the round trip has to preserve sequence numbers
	// and the latest flag, not just individual rows.
	for _, in := range []corrections.Input{
		{BookID: bookID, ParagraphID: paraIDs[0], Word: "teh", CorrectedWord: "the", FixType: diff.FixTypeDisambiguation},
		{BookID: bookID, ParagraphID: paraIDs[0], Word: "the", CorrectedWord: "they", FixType: diff.FixTypeDisambiguation},
	} {
		if _, err := ledger.RecordCorrection(ctx, in); err != nil {
			t.Fatalf("record %q: %v", in.Word, err)
		}
	}

	var buf bytes.Buffer
	n, err := ledger.ExportJSONL(ctx, &buf)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n != 2 {
		t.Fatalf("exported %d lines, want 2", n)
	}
	if lines := strings.Count(buf.String(), "\n"); lines != 2 {
		t.Fatalf("output has %d newlines, want one per record", lines)
	}

	if _, err := ledger.Clear(ctx, paraIDs[0]); err != nil {
		t.Fatalf("clear: %v", err)
	}

	n, err = ledger.ImportJSONL(ctx, &buf)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d lines, want 2", n)
	}

	history, err := ledger.History(ctx, paraIDs[0], "teh")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("restored chain has %d rows, want 2", len(history))
	}
	if history[0].IsLatestFix || !history[1].IsLatestFix {
		t.Errorf("latest flag not restored: %#v", history)
	}
	if history[1].FixSequence != 2 || history[1].CorrectedWord != "they" {
		t.Errorf("restored row = %#v, want sequence 2 correcting to they", history[1])
	}
}

func TestImportRejectsInvalidLine(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	bookID, paraIDs := seedBook(t, db, "teh word")
	ledger := corrections.NewStore(db)

	if _, err := ledger.RecordCorrection(ctx, corrections.Input{
		BookID: bookID, ParagraphID: paraIDs[0],
		Word: "teh", CorrectedWord: "the", FixType: diff.FixTypeDisambiguation,
	}); err != nil {
		t.Fatalf("record: %v", err)
	}
	var buf bytes.Buffer
	if _, err := ledger.ExportJSONL(ctx, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	if _, err := ledger.Clear(ctx, paraIDs[0]); err != nil {
		t.Fatalf("clear: %v", err)
	}

	cases := []struct {
		name  string
		input string
	}{
		{"not json", "not json at all\n"},
		{"missing fields", "{}\n"},
		{"bad sequence", `{"id":"x","book_id":"b","paragraph_id":"p","root_word":"r","prior_word":"r","corrected_word":"c","aggregation_key":"r|c","fix_type":"default","fix_sequence":0,"is_latest_fix":true,"created_at":"2026-01-02T15:04:05Z"}` + "\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// One good line followed by a bad one: nothing may land.
			input := buf.String() + tc.input
			if _, err := ledger.ImportJSONL(ctx, strings.NewReader(input)); err == nil {
				t.Fatal("import accepted an invalid line")
			}
			history, err := ledger.History(ctx, paraIDs[0], "teh")
			if err != nil {
				t.Fatalf("history: %v", err)
			}
			if len(history) != 0 {
				t.Fatalf("failed import left %d rows behind", len(history))
			}
		})
	}
}
