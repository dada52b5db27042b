package journalservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/holmgren/dagaz/internal/apperr"
	"github.com/holmgren/dagaz/internal/journalservice"
	"github.com/holmgren/dagaz/internal/models"
	"github.com/holmgren/dagaz/internal/testutil"
)

const sampleNote = `> [!dream] 2024-01-15 Flying
> Flew over mountains.
>
> > [!metrics]
> > Lucidity: 3, Vividness: 4
`

func newService(t *testing.T) *journalservice.Service {
	t.Helper()
	db := testutil.TestDB(t)
	_, store := testutil.TestVault(t)
	return journalservice.NewService(store, db, models.DefaultStructures())
}

func newServiceWithVault(t *testing.T) (*journalservice.Service, func(path, content string)) {
	t.Helper()
	db := testutil.TestDB(t)
	_, store := testutil.TestVault(t)
	svc := journalservice.NewService(store, db, models.DefaultStructures())
	write := func(path, content string) {
		testutil.WriteNote(t, store, path, content)
	}
	return svc, write
}

func TestParseFileIndexesEntries(t *testing.T) {
	svc, write := newServiceWithVault(t)
	write("dreams/a.md", sampleNote)

	res, err := svc.ParseFile(context.Background(), "dreams/a.md")
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(res.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(res.Entries))
	}

	e, err := svc.GetEntry(context.Background(), "dreams/a.md", "")
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if e.Date != "2024-01-15" || e.WordCount != 3 {
		t.Errorf("indexed entry wrong: %+v", e)
	}
	if v := e.Metrics["Lucidity"]; !v.Numeric || v.Num != 3 {
		t.Errorf("Lucidity = %+v", v)
	}
}

func TestParseFileMissing(t *testing.T) {
	svc := newService(t)

	_, err := svc.ParseFile(context.Background(), "nope.md")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestGetEntryMissing(t *testing.T) {
	svc := newService(t)

	_, err := svc.GetEntry(context.Background(), "nope.md", "")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSummaryAggregatesMetrics(t *testing.T) {
	svc, write := newServiceWithVault(t)
	write("a.md", sampleNote)
	write("b.md", `> [!dream] 2024-01-16 Falling
> Fell forever.
>
> > [!metrics]
> > Lucidity: 1
`)

	if _, err := svc.ReindexAll(context.Background()); err != nil {
		t.Fatalf("ReindexAll: %v", err)
	}

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}

	var lucidity *models.MetricSummary
	for i := range summary {
		if summary[i].MetricName == "Lucidity" {
			lucidity = &summary[i]
		}
	}
	if lucidity == nil {
		t.Fatal("no Lucidity summary")
	}
	if lucidity.Count != 2 || lucidity.Min != 1 || lucidity.Max != 3 || lucidity.Average != 2 {
		t.Errorf("Lucidity summary = %+v", lucidity)
	}
}

func TestLintFileRanksStructures(t *testing.T) {
	svc, write := newServiceWithVault(t)
	write("a.md", sampleNote)

	res, err := svc.LintFile(context.Background(), "a.md")
	if err != nil {
		t.Fatalf("LintFile: %v", err)
	}
	if res.Best != "default-nested" {
		t.Errorf("best = %q, want default-nested", res.Best)
	}
	if len(res.Reports) != 1 {
		t.Fatalf("reports = %d, want 1", len(res.Reports))
	}
	if res.Reports[0].Score != 0 {
		t.Errorf("score = %d, want 0 (diagnostics: %+v)", res.Reports[0].Score, res.Reports[0].Diagnostics)
	}
}

func TestReindexAllCountsFiles(t *testing.T) {
	svc, write := newServiceWithVault(t)
	write("a.md", sampleNote)
	write("sub/b.md", sampleNote)

	n, err := svc.ReindexAll(context.Background())
	if err != nil {
		t.Fatalf("ReindexAll: %v", err)
	}
	if n != 2 {
		t.Errorf("reindexed = %d, want 2", n)
	}

	rows, total, err := svc.ListEntries(context.Background(), 10, 0, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(rows) != 2 {
		t.Errorf("listed = %d/%d, want 2/2", len(rows), total)
	}
}

func TestParseTextDoesNotTouchIndex(t *testing.T) {
	svc := newService(t)

	res := svc.ParseText(context.Background(), sampleNote, "inline.md")
	if len(res.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(res.Entries))
	}

	_, total, err := svc.ListEntries(context.Background(), 10, 0, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if total != 0 {
		t.Errorf("index should be empty, got %d entries", total)
	}
}
