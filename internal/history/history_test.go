package history

import (
	"path/filepath"
	"testing"
	"time"
)

func sampleRecord(runID, outcome string, at time.Time) Record {
	return Record{
		RunID:       runID,
		Mode:        "generate",
		InputPath:   "/work/input",
		OutputPath:  "/work/guides",
		Outcome:     outcome,
		Errors:      0,
		Warnings:    1,
		Fingerprint: "b3a1",
		Commit:      "0123456789ab",
		StartedAt:   at,
		FinishedAt:  at.Add(120 * time.Millisecond),
	}
}

func TestAppendAndList(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	base := time.Date(2026, 8, 23, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		if err := store.Append(ctx, sampleRecord(id, "success", base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("failed to append %s: %v", id, err)
		}
	}

	records, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].RunID != "run-c" || records[1].RunID != "run-b" {
		t.Errorf("expected newest first, got %s then %s", records[0].RunID, records[1].RunID)
	}

	rec := records[0]
	if rec.Mode != "generate" || rec.Outcome != "success" || rec.Warnings != 1 {
		t.Errorf("record lost fields: %+v", rec)
	}
	if rec.Commit != "0123456789ab" || rec.Fingerprint != "b3a1" {
		t.Errorf("record lost provenance: %+v", rec)
	}
	if rec.StartedAt.Unix() != base.Add(2*time.Minute).Unix() {
		t.Errorf("started_at = %v", rec.StartedAt)
	}
}

func TestListDefaultLimit(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	ctx := t.Context()
	now := time.Now()
	for i := range DefaultListLimit + 5 {
		rec := sampleRecord("run", "success", now)
		rec.RunID = rec.RunID + "-" + string(rune('a'+i%26))
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
	}

	records, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(records) != DefaultListLimit {
		t.Errorf("expected the default limit of %d, got %d", DefaultListLimit, len(records))
	}
}

func TestRecordsSurviveReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), FileName)

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.Append(t.Context(), sampleRecord("run-1", "blocked", time.Now())); err != nil {
		t.Fatalf("failed to append: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close: %v", err)
	}

	reopened, err := Open(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	records, err := reopened.List(t.Context(), 0)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(records) != 1 || records[0].RunID != "run-1" || records[0].Outcome != "blocked" {
		t.Errorf("unexpected records after reopen: %+v", records)
	}
}

func TestEmptyStoreLists(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	records, err := store.List(t.Context(), 10)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestRecordDuration(t *testing.T) {
	rec := sampleRecord("run-1", "success", time.Now())
	if rec.Duration() != 120*time.Millisecond {
		t.Errorf("duration = %v", rec.Duration())
	}
}
