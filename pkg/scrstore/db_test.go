package scrstore

import "testing"

func TestStoreSaveAndLoadRoundTrip(t *testing.T) {
	store, err := Open(Config{Path: ":memory:"}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	if _, _, ok := store.Load("cch-1"); ok {
		t.Fatal("Load() on empty store returned ok=true")
	}

	if err := store.Save("cch-1", 42, 50); err != nil {
		t.Fatalf("Save: %v", err)
	}

	scr, confidence, ok := store.Load("cch-1")
	if !ok {
		t.Fatal("Load() after Save returned ok=false")
	}
	if scr != 42 || confidence != 50 {
		t.Fatalf("Load() = (%d, %d), want (42, 50)", scr, confidence)
	}

	if err := store.Save("cch-1", 7, 60); err != nil {
		t.Fatalf("Save (update): %v", err)
	}
	scr, confidence, ok = store.Load("cch-1")
	if !ok || scr != 7 || confidence != 60 {
		t.Fatalf("Load() after update = (%d, %d, %v), want (7, 60, true)", scr, confidence, ok)
	}
}

func TestStoreChannelsAreIndependent(t *testing.T) {
	store, err := Open(Config{Path: ":memory:"}, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store.Close()

	store.Save("cch-1", 1, 10)
	store.Save("cch-2", 2, 20)

	scr1, _, _ := store.Load("cch-1")
	scr2, _, _ := store.Load("cch-2")
	if scr1 != 1 || scr2 != 2 {
		t.Fatalf("channels not independent: cch-1=%d cch-2=%d", scr1, scr2)
	}
}
