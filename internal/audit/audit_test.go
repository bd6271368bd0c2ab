package audit

import (
	"os"
	"testing"

	"github.com/boltdb/bolt"
	"github.com/pratyushraj/noticebazaar/misc"
)

func testDB(t *testing.T) *bolt.DB {
	t.Helper()
	dir, err := os.MkdirTemp("", "nb-audit")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	db := misc.OpenDB(dir+"/", "test")
	t.Cleanup(func() { db.Close() })
	if err := misc.EnsureBuckets(db, []string{"audit"}); err != nil {
		t.Fatal(err)
	}
	return db
}

func TestRecordAndRead(t *testing.T) {
	db := testDB(t)
	l := NewLog("audit")

	l.Record(db, "deal1", "GlowCo", BrandAccepted, map[string]interface{}{"brandEmail": "b@glowco.fake"})
	l.Record(db, "deal1", SystemActor, ContractGenerated, nil)
	l.Record(db, "deal2", "GlowCo", BrandDeclined, nil)

	entries, err := l.ForDeal(db, "deal1")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Kind != BrandAccepted || entries[1].Kind != ContractGenerated {
		t.Fatalf("entries out of order: %+v", entries)
	}
	if entries[0].Meta["brandEmail"] != "b@glowco.fake" {
		t.Fatalf("meta lost: %+v", entries[0].Meta)
	}
}

func TestForDealIsolation(t *testing.T) {
	db := testDB(t)
	l := NewLog("audit")

	l.Record(db, "deal1", SystemActor, ReminderSent, nil)
	l.Record(db, "deal10", SystemActor, ReminderSent, nil)

	entries, err := l.ForDeal(db, "deal1")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].DealId != "deal1" {
		t.Fatalf("prefix scan leaked across deals: %+v", entries)
	}
}
