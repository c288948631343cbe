package submissions

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starsign-web/starsign/internal/zodiac"
)

func newTestSubmission(i int) Submission {
	return New(
		fmt.Sprintf("id-%03d", i),
		"Test User",
		time.Date(1990, time.May, 15, 0, 0, 0, 0, time.UTC),
		zodiac.Taurus,
		time.Date(2026, time.August, 23, 10, 0, 0, 0, time.UTC).Add(time.Duration(i)*time.Second),
	)
}

// testRetention appends 105 records into a store capped at 100 and
// checks both the serve window and the trim.
func testRetention(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	for i := 0; i < 105; i++ {
		if err := store.Append(ctx, newTestSubmission(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 10 {
		t.Fatalf("len(recent) = %d, want 10", len(recent))
	}
	for i, sub := range recent {
		wantID := fmt.Sprintf("id-%03d", 104-i)
		if sub.ID != wantID {
			t.Fatalf("recent[%d].ID = %q, want %q", i, sub.ID, wantID)
		}
	}

	all, err := store.Recent(ctx, 200)
	if err != nil {
		t.Fatalf("recent all: %v", err)
	}
	if len(all) != 100 {
		t.Fatalf("len(all) = %d, want 100 after trim", len(all))
	}
	if all[len(all)-1].ID != "id-005" {
		t.Fatalf("oldest retained = %q, want id-005", all[len(all)-1].ID)
	}
}

func TestMemoryStoreRetention(t *testing.T) {
	store := NewMemoryStore(100)
	defer store.Close()
	testRetention(t, store)
}

func TestFileStoreRetention(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "submissions.json"), 100)
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	defer store.Close()
	testRetention(t, store)
}

func TestSQLiteStoreRetention(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "submissions.db"), 100)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	defer store.Close()
	testRetention(t, store)
}

func TestMemoryStoreEmptyRecent(t *testing.T) {
	store := NewMemoryStore(100)
	recent, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("len(recent) = %d, want 0", len(recent))
	}
}

func TestMemoryStoreConcurrentAppend(t *testing.T) {
	store := NewMemoryStore(50)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = store.Append(context.Background(), newTestSubmission(base*25+j))
			}
		}(w)
	}
	wg.Wait()
	if store.Len() != 50 {
		t.Fatalf("len = %d, want 50", store.Len())
	}
}

func TestFileStoreReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submissions.json")
	ctx := context.Background()

	store, err := NewFileStore(path, 100)
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := store.Append(ctx, newTestSubmission(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewFileStore(path, 100)
	if err != nil {
		t.Fatalf("reopen file store: %v", err)
	}
	defer reopened.Close()

	recent, err := reopened.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("len(recent) = %d, want 3", len(recent))
	}
	got, want := recent[0], newTestSubmission(2)
	if got.ID != want.ID || got.Name != want.Name || got.Sign != want.Sign {
		t.Fatalf("reloaded = %+v, want %+v", got, want)
	}
	if !got.DateOfBirth.Equal(want.DateOfBirth) || !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("reloaded times = %v/%v, want %v/%v", got.DateOfBirth, got.CreatedAt, want.DateOfBirth, want.CreatedAt)
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "submissions.db")
	ctx := context.Background()

	store, err := NewSQLiteStore(path, 100)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := store.Append(ctx, newTestSubmission(i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := NewSQLiteStore(path, 100)
	if err != nil {
		t.Fatalf("reopen sqlite store: %v", err)
	}
	defer reopened.Close()

	recent, err := reopened.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("len(recent) = %d, want 3", len(recent))
	}
	got, want := recent[0], newTestSubmission(2)
	if got.ID != want.ID || got.Name != want.Name || got.Sign != want.Sign {
		t.Fatalf("reopened = %+v, want %+v", got, want)
	}
	if !got.DateOfBirth.Equal(want.DateOfBirth) || !got.CreatedAt.Equal(want.CreatedAt) {
		t.Fatalf("reopened times = %v/%v, want %v/%v", got.DateOfBirth, got.CreatedAt, want.DateOfBirth, want.CreatedAt)
	}
}

func TestNewStoreSelection(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	store, mode, err := NewStore(ctx, Options{})
	if err != nil {
		t.Fatalf("auto store: %v", err)
	}
	if mode != BackendMemory {
		t.Fatalf("mode = %q, want %q", mode, BackendMemory)
	}
	store.Close()

	store, mode, err = NewStore(ctx, Options{SQLitePath: filepath.Join(dir, "auto.db")})
	if err != nil {
		t.Fatalf("auto sqlite store: %v", err)
	}
	if mode != BackendSQLite {
		t.Fatalf("mode = %q, want %q", mode, BackendSQLite)
	}
	store.Close()

	store, mode, err = NewStore(ctx, Options{
		FilePath:   filepath.Join(dir, "auto.json"),
		SQLitePath: filepath.Join(dir, "unused.db"),
	})
	if err != nil {
		t.Fatalf("auto file store: %v", err)
	}
	if mode != BackendFile {
		t.Fatalf("mode = %q, want %q", mode, BackendFile)
	}
	store.Close()

	store, mode, err = NewStore(ctx, Options{Backend: BackendMemory, DatabaseURL: "postgres://ignored"})
	if err != nil {
		t.Fatalf("explicit memory store: %v", err)
	}
	if mode != BackendMemory {
		t.Fatalf("mode = %q, want %q (explicit backend wins)", mode, BackendMemory)
	}
	store.Close()

	if _, _, err := NewStore(ctx, Options{Backend: "bogus"}); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
