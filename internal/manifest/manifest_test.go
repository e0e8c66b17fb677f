package manifest

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "raido-manifest-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleNote(basename, id string) models.ConversionRecord {
	return models.ConversionRecord{
		Basename:    basename,
		SourcePath:  basename + ".md",
		OrgPath:     basename + ".org",
		ID:          id,
		Title:       basename,
		Checksum:    "abc123",
		ConvertedAt: time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC),
	}
}

func TestRecordAndListNotes(t *testing.T) {
	db := testDB(t)
	if err := db.RecordNote(sampleNote("B Note", "ID2")); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordNote(sampleNote("A Note", "ID1")); err != nil {
		t.Fatal(err)
	}

	notes, err := db.ListNotes()
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 2 {
		t.Fatalf("len = %d, want 2", len(notes))
	}
	// Ordered by basename.
	if notes[0].Basename != "A Note" || notes[1].Basename != "B Note" {
		t.Errorf("order = %q, %q", notes[0].Basename, notes[1].Basename)
	}
}

func TestRecordNote_Upsert(t *testing.T) {
	db := testDB(t)
	_ = db.RecordNote(sampleNote("Foo", "ID1"))
	_ = db.RecordNote(sampleNote("Foo", "ID2"))

	rec, err := db.GetNote("Foo")
	if err != nil {
		t.Fatal(err)
	}
	if rec.ID != "ID2" {
		t.Errorf("id = %q, want ID2", rec.ID)
	}
}

func TestGetNote_NotFound(t *testing.T) {
	db := testDB(t)
	_, err := db.GetNote("missing")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestIDTable(t *testing.T) {
	db := testDB(t)
	_ = db.RecordNote(sampleNote("Note A", "ID1"))
	_ = db.RecordNote(sampleNote("Note B", "ID2"))

	table, err := db.IDTable()
	if err != nil {
		t.Fatal(err)
	}
	if table["Note A"] != "ID1" || table["Note B"] != "ID2" {
		t.Errorf("table = %v", table)
	}
}

func TestAssetsAndReset(t *testing.T) {
	db := testDB(t)
	_ = db.RecordNote(sampleNote("Note A", "ID1"))
	if err := db.RecordAsset(models.AssetRecord{
		SourcePath: "img/pic.png",
		DestPath:   "/images/pic.png",
		Kind:       models.AssetImage,
	}); err != nil {
		t.Fatal(err)
	}

	assets, err := db.ListAssets()
	if err != nil {
		t.Fatal(err)
	}
	if len(assets) != 1 || assets[0].Kind != models.AssetImage {
		t.Errorf("assets = %v", assets)
	}

	if err := db.Reset(); err != nil {
		t.Fatal(err)
	}
	notes, _ := db.ListNotes()
	assets, _ = db.ListAssets()
	if len(notes) != 0 || len(assets) != 0 {
		t.Errorf("after reset: notes=%d assets=%d", len(notes), len(assets))
	}
}
