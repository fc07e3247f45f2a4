package storage

import (
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"
)

func TestBoltStoreRecordsNewestFirst(t *testing.T) {
	dir := t.TempDir()
	storeRaw, err := openBolt(dir+"/journal.db", normalizeOptions(Options{}))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	for _, path := range []string{"/payments", "/payments/1", "/ping"} {
		if err := store.Record(Entry{Method: "GET", Path: path, StatusCode: 200}); err != nil {
			t.Fatalf("Record %s: %v", path, err)
		}
	}

	entries, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Path != "/ping" || entries[1].Path != "/payments/1" {
		t.Fatalf("unexpected order %#v", entries)
	}
	if entries[0].ID == "" || entries[0].At.IsZero() {
		t.Fatalf("expected generated id and timestamp, got %#v", entries[0])
	}

	all, err := store.Recent(0)
	if err != nil || len(all) != 3 {
		t.Fatalf("expected all 3 entries, got %d err=%v", len(all), err)
	}
}

func TestBoltStoreExpiresEntries(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		EntryTTL:        time.Minute,
		CleanupInterval: time.Minute,
	}

	storeRaw, err := openBolt(dir+"/journal.db", opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	clock := time.Now()
	store.now = func() time.Time { return clock }

	if err := store.Record(Entry{Method: "POST", Path: "/payments"}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	clock = clock.Add(2 * time.Minute)
	entries, err := store.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected expired entry to be hidden, got %#v", entries)
	}

	// Next write sweeps the expired entry.
	if err := store.Record(Entry{Method: "GET", Path: "/ping"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	var stored int
	if err := store.db.View(func(tx *bolt.Tx) error {
		stored = tx.Bucket([]byte(journalBucket)).Stats().KeyN
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
	if stored != 1 {
		t.Fatalf("expected cleanup to leave 1 entry, got %d", stored)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Record(Entry{Path: "/x"}); err != nil {
		t.Fatalf("noop store Record: %v", err)
	}
	if entries, _ := store.Recent(5); entries != nil {
		t.Fatalf("noop store should return no entries")
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing path")
	}
}
