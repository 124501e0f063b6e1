package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestAppendAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for i, text := range []string{"first", "second", "third"} {
		_, err := store.Append(ctx, Entry{
			SessionID:  "session-a",
			Text:       text,
			Confidence: 0.7 + float64(i)/10,
		})
		if err != nil {
			t.Fatalf("Append %q: %v", text, err)
		}
	}

	entries, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Text != "third" || entries[1].Text != "second" {
		t.Errorf("order = %q, %q; want newest first", entries[0].Text, entries[1].Text)
	}
	if entries[0].SpokenAt.IsZero() {
		t.Error("SpokenAt not recorded")
	}
}

func TestRecentUnlimited(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for range 5 {
		if _, err := store.Append(ctx, Entry{SessionID: "s", Text: "line"}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.Recent(ctx, 0)
	if err != nil || len(entries) != 5 {
		t.Fatalf("Recent(0) = %d entries, %v; want 5", len(entries), err)
	}
}

func TestBySession(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	for _, e := range []Entry{
		{SessionID: "a", Text: "a1"},
		{SessionID: "b", Text: "b1"},
		{SessionID: "a", Text: "a2"},
	} {
		if _, err := store.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.BySession(ctx, "a")
	if err != nil {
		t.Fatalf("BySession: %v", err)
	}
	if len(entries) != 2 || entries[0].Text != "a1" || entries[1].Text != "a2" {
		t.Errorf("session a entries = %+v", entries)
	}
}

func TestCountAndClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if _, err := store.Append(ctx, Entry{SessionID: "s", Text: "x"}); err != nil {
		t.Fatal(err)
	}

	n, err := store.Count(ctx)
	if err != nil || n != 1 {
		t.Fatalf("Count = %d, %v", n, err)
	}

	removed, err := store.Clear(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("Clear = %d, %v", removed, err)
	}
	if n, _ = store.Count(ctx); n != 0 {
		t.Errorf("Count after clear = %d", n)
	}
}

func TestSpokenAtRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	if _, err := store.Append(ctx, Entry{SessionID: "s", Text: "x", SpokenAt: at}); err != nil {
		t.Fatal(err)
	}

	entries, err := store.Recent(ctx, 1)
	if err != nil || len(entries) != 1 {
		t.Fatal(err)
	}
	if !entries[0].SpokenAt.Equal(at) {
		t.Errorf("SpokenAt = %v, want %v", entries[0].SpokenAt, at)
	}
}
