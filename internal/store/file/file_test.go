package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"cafeprep/internal/core"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func sample(item string, prepared int64) core.Entry {
	return core.Entry{Date: "2024-01-01", Item: item, Prepared: core.Qty(prepared), Remanence: core.Qty(1), Waste: core.Qty(0)}
}

func TestNewRejectsUnsupportedExtension(t *testing.T) {
	_, err := New(Config{Path: filepath.Join(t.TempDir(), "entries.json")})
	if !errors.Is(err, core.ErrStoreConnect) || !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected connect error for unsupported format, got %v", err)
	}
}

func TestNewRejectsBrokenHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.csv")
	if err := os.WriteFile(path, []byte("foo,bar\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(Config{Path: path}); !errors.Is(err, core.ErrStoreConnect) {
		t.Fatalf("expected connect error, got %v", err)
	}
}

func TestAppendThenLoad(t *testing.T) {
	for _, ext := range []string{".csv", ".xlsx"} {
		t.Run(ext, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "nested", "entries"+ext)
			s, err := New(Config{Path: path})
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			defer s.Close()

			all, err := s.LoadAll(ctx)
			if err != nil || len(all) != 0 {
				t.Fatalf("expected empty log for missing file, got %v (err=%v)", all, err)
			}

			if _, err := s.Append(ctx, sample("Brownie", 6)); err != nil {
				t.Fatalf("append: %v", err)
			}
			ref, err := s.Append(ctx, sample("Pizza", 4))
			if err != nil {
				t.Fatalf("append: %v", err)
			}
			if ref != "entries"+ext+":3" {
				t.Fatalf("unexpected ref %q", ref)
			}

			all, err = s.LoadAll(ctx)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if len(all) != 2 || all[0].Item != "Brownie" || all[1].Item != "Pizza" || !all[1].Prepared.Equal(core.Qty(4)) {
				t.Fatalf("unexpected log: %+v", all)
			}

			// a fresh store over the same file sees the same log
			s2, err := New(Config{Path: path})
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer s2.Close()
			again, _ := s2.LoadAll(ctx)
			if len(again) != 2 {
				t.Fatalf("expected 2 entries after reopen, got %d", len(again))
			}
		})
	}
}

func TestAppendKeepsExistingHeaderLayout(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "entries.csv")
	content := "Date,Item,Prepared,Remaining,Waste\n2024-01-01,Brownie,5,1,0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s, err := New(Config{Path: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Close()

	if _, err := s.Append(ctx, sample("Pizza", 3)); err != nil {
		t.Fatalf("append: %v", err)
	}
	b, _ := os.ReadFile(path)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 3 || lines[0] != "Date,Item,Prepared,Remaining,Waste" || lines[2] != "2024-01-01,Pizza,3,1,0" {
		t.Fatalf("unexpected file content:\n%s", b)
	}
}

func TestLoadAllServesCacheUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "entries.csv")
	s, err := New(Config{Path: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Close()
	if _, err := s.Append(ctx, sample("Brownie", 6)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if got, _ := s.LoadAll(ctx); len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}

	// external write without a watcher: cached copy is served
	external := "date,item,prepared,remanence,waste\n2024-01-01,Brownie,6,1,0\n2024-01-01,Pizza,2,0,0\n"
	if err := os.WriteFile(path, []byte(external), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.LoadAll(ctx); len(got) != 1 {
		t.Fatalf("expected cached log of 1 entry, got %d", len(got))
	}

	s.Invalidate()
	if got, _ := s.LoadAll(ctx); len(got) != 2 {
		t.Fatalf("expected 2 entries after invalidate, got %d", len(got))
	}
}

func TestWatchInvalidatesOnExternalWrite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "entries.csv")
	s, err := New(Config{Path: path, Watch: true})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Close()

	if _, err := s.Append(ctx, sample("Brownie", 6)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if got, _ := s.LoadAll(ctx); len(got) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(got))
	}

	external := "date,item,prepared,remanence,waste\n2024-01-01,Brownie,6,1,0\n2024-01-01,Pizza,2,0,0\n"
	if err := os.WriteFile(path, []byte(external), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		got, err := s.LoadAll(ctx)
		if err == nil && len(got) == 2 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("watcher did not invalidate cache, last load=%d err=%v", len(got), err)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestLoadAllReadErrorReturnsNoEntries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "entries.csv")
	s, err := New(Config{Path: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Close()

	if err := os.WriteFile(path, []byte("nope\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	s.Invalidate()
	got, err := s.LoadAll(ctx)
	if !errors.Is(err, core.ErrStoreRead) || got != nil {
		t.Fatalf("expected read error and no entries, got %v (err=%v)", got, err)
	}
}

func TestAppendFailureLeavesFileUntouched(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "entries.csv")
	s, err := New(Config{Path: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer s.Close()
	if _, err := s.Append(ctx, sample("Brownie", 6)); err != nil {
		t.Fatalf("append: %v", err)
	}
	before, _ := os.ReadFile(path)

	_, err = s.Append(ctx, core.Entry{Date: "2024-01-01", Item: "Pizza", Prepared: core.Qty(-1)})
	if !errors.Is(err, core.ErrStoreWrite) {
		t.Fatalf("expected write error, got %v", err)
	}
	after, _ := os.ReadFile(path)
	if string(before) != string(after) {
		t.Fatalf("failed append modified the file")
	}
}
