// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package users

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func testStores(t *testing.T) map[string]Store {
	t.Helper()

	badgerStore, err := OpenBadger("")
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	t.Cleanup(func() { badgerStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"badger": badgerStore,
	}
}

func TestCreateAndGet(t *testing.T) {
	t.Parallel()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			alice, err := store.Create(ctx, "  Alice ")
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if alice.Name != "Alice" || alice.ID < 1 || alice.CreatedAt.IsZero() {
				t.Errorf("Create() = %+v", alice)
			}

			bob, err := store.Create(ctx, "Bob")
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if bob.ID == alice.ID {
				t.Errorf("ids not unique: %d", bob.ID)
			}

			got, err := store.Get(ctx, alice.ID)
			if err != nil || got.Name != "Alice" {
				t.Errorf("Get() = %+v, %v", got, err)
			}
			if _, err := store.Get(ctx, 9999); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(unknown) error = %v, want ErrNotFound", err)
			}

			ok, err := store.Exists(ctx, bob.ID)
			if err != nil || !ok {
				t.Errorf("Exists(bob) = %v, %v", ok, err)
			}
			if ok, _ := store.Exists(ctx, 9999); ok {
				t.Error("Exists(unknown) = true")
			}
		})
	}
}

func TestCreateRejectsDuplicatesAndInvalidNames(t *testing.T) {
	t.Parallel()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := store.Create(ctx, "Alice"); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if _, err := store.Create(ctx, "ALICE "); !errors.Is(err, ErrDuplicateName) {
				t.Errorf("duplicate error = %v, want ErrDuplicateName", err)
			}
			if _, err := store.Create(ctx, "   "); !errors.Is(err, ErrInvalidName) {
				t.Errorf("blank error = %v, want ErrInvalidName", err)
			}
			if _, err := store.Create(ctx, strings.Repeat("x", MaxNameLength+1)); !errors.Is(err, ErrInvalidName) {
				t.Errorf("long name error = %v, want ErrInvalidName", err)
			}
			if n, _ := store.Count(ctx); n != 1 {
				t.Errorf("Count() = %d, want 1", n)
			}
		})
	}
}

func TestListOrderedByName(t *testing.T) {
	t.Parallel()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, n := range []string{"carol", "Alice", "bob"} {
				if _, err := store.Create(ctx, n); err != nil {
					t.Fatalf("Create(%s) error = %v", n, err)
				}
			}

			list, err := store.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			var names []string
			for _, u := range list {
				names = append(names, u.Name)
			}
			if strings.Join(names, ",") != "Alice,bob,carol" {
				t.Errorf("List() names = %v", names)
			}
		})
	}
}

func TestPreferences(t *testing.T) {
	t.Parallel()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			u, err := store.Create(ctx, "Reader")
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			prefs, err := store.Preferences(ctx, u.ID)
			if err != nil {
				t.Fatalf("Preferences() error = %v", err)
			}
			if prefs.Algorithm != DefaultAlgorithm || prefs.SelectedCategory != "" {
				t.Errorf("default Preferences() = %+v", prefs)
			}

			category := " Science "
			prefs, err = store.SetPreferences(ctx, u.ID, PreferencesUpdate{SelectedCategory: &category})
			if err != nil {
				t.Fatalf("SetPreferences() error = %v", err)
			}
			if prefs.Algorithm != DefaultAlgorithm || prefs.SelectedCategory != "Science" {
				t.Errorf("SetPreferences(category) = %+v", prefs)
			}

			algorithm := "jeopardy"
			if _, err = store.SetPreferences(ctx, u.ID, PreferencesUpdate{Algorithm: &algorithm}); err != nil {
				t.Fatalf("SetPreferences() error = %v", err)
			}
			prefs, err = store.Preferences(ctx, u.ID)
			if err != nil {
				t.Fatalf("Preferences() error = %v", err)
			}
			if prefs.Algorithm != "jeopardy" || prefs.SelectedCategory != "Science" {
				t.Errorf("partial update lost a field: %+v", prefs)
			}

			if _, err := store.SetPreferences(ctx, 9999, PreferencesUpdate{}); !errors.Is(err, ErrNotFound) {
				t.Errorf("SetPreferences(unknown) error = %v", err)
			}
			if _, err := store.Preferences(ctx, 9999); !errors.Is(err, ErrNotFound) {
				t.Errorf("Preferences(unknown) error = %v", err)
			}
		})
	}
}

func TestConcurrentCreateSameName(t *testing.T) {
	t.Parallel()

	for name, store := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var (
				wg      sync.WaitGroup
				mu      sync.Mutex
				created int
			)
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := store.Create(ctx, "Racer"); err == nil {
						mu.Lock()
						created++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()
			if created != 1 {
				t.Errorf("created %d users with the same name, want 1", created)
			}
		})
	}
}

func TestBadgerStorePersists(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "users")
	ctx := context.Background()

	store, err := OpenBadger(dir)
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	first, err := store.Create(ctx, "Persistent")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	store, err = OpenBadger(dir)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer store.Close()

	if ok, _ := store.Exists(ctx, first.ID); !ok {
		t.Error("user lost across reopen")
	}
	second, err := store.Create(ctx, "Another")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if second.ID <= first.ID {
		t.Errorf("id reused after reopen: %d <= %d", second.ID, first.ID)
	}
}
