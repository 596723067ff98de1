package models

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
)

func testStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(t.TempDir(), log.New(io.Discard, "", 0))
}

func TestFileStoreRoundTrip(t *testing.T) {
	fs := testStore(t)

	st := NewState()
	st.Ledger.PlayerName = "UNIT-07"
	st.Ledger.Gold = 400
	st.LastKeyIndex = 2
	if err := fs.Save(st); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := fs.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got == nil {
		t.Fatal("Load returned nil for existing snapshot")
	}
	if got.Ledger.PlayerName != "UNIT-07" || got.Ledger.Gold != 400 {
		t.Errorf("ledger lost in round trip: %+v", got.Ledger)
	}
	if got.LastKeyIndex != 2 {
		t.Errorf("LastKeyIndex = %d, want 2", got.LastKeyIndex)
	}
}

func TestFileStoreMissingMeansNoState(t *testing.T) {
	fs := testStore(t)
	got, err := fs.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil state for missing snapshot, got %+v", got)
	}
}

func TestFileStoreMalformedDiscarded(t *testing.T) {
	fs := testStore(t)
	path := filepath.Join(fs.Dir, snapshotFile)
	if err := os.WriteFile(path, []byte("::: not yaml {{{"), 0644); err != nil {
		t.Fatalf("write corrupt snapshot: %v", err)
	}

	got, err := fs.Load()
	if err != nil {
		t.Fatalf("Load should not fail on corruption: %v", err)
	}
	if got != nil {
		t.Errorf("corrupt snapshot should be discarded, got %+v", got)
	}
}

func TestFileStoreReset(t *testing.T) {
	fs := testStore(t)
	if err := fs.Reset(); err != nil {
		t.Fatalf("Reset on missing snapshot: %v", err)
	}
	if err := fs.Save(NewState()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := fs.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	got, err := fs.Load()
	if err != nil || got != nil {
		t.Errorf("expected empty store after reset, got %+v, %v", got, err)
	}
}
