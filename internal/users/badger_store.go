// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package users

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Key prefixes for BadgerDB storage
const (
	userKeyPrefix  = "user:"
	nameKeyPrefix  = "user_name:"
	prefsKeyPrefix = "prefs:"
	userSequence   = "seq:user"
)

// maxConflictRetries bounds retries of a create that raced another writer.
const maxConflictRetries = 3

// BadgerStore keeps users in BadgerDB. Ids come from a badger sequence and
// a name index key, written in the same transaction as the user, keeps
// names unique.
type BadgerStore struct {
	db  *badger.DB
	seq *badger.Sequence
	now func() time.Time
}

// OpenBadger opens (or creates) a store at path. An empty path keeps the
// database in memory.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db for users: %w", err)
	}
	seq, err := db.GetSequence([]byte(userSequence), 100)
	if err != nil {
		_ = db.Close() //nolint:errcheck // best effort after failed open
		return nil, fmt.Errorf("user id sequence: %w", err)
	}
	return &BadgerStore{db: db, seq: seq, now: time.Now}, nil
}

func userKey(id int64) []byte {
	// Zero padding keeps keys in id order.
	return []byte(fmt.Sprintf("%s%020d", userKeyPrefix, id))
}

func prefsKey(id int64) []byte {
	return []byte(prefsKeyPrefix + strconv.FormatInt(id, 10))
}

// Create adds a user. Names are trimmed and unique ignoring case.
func (s *BadgerStore) Create(_ context.Context, name string) (*User, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		user, err := s.create(name)
		if errors.Is(err, badger.ErrConflict) && attempt < maxConflictRetries {
			continue
		}
		return user, err
	}
}

func (s *BadgerStore) create(name string) (*User, error) {
	var user *User
	err := s.db.Update(func(txn *badger.Txn) error {
		idxKey := []byte(nameKeyPrefix + nameKey(name))
		if _, err := txn.Get(idxKey); err == nil {
			return ErrDuplicateName
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check name: %w", err)
		}

		next, err := s.seq.Next()
		if err != nil {
			return fmt.Errorf("next user id: %w", err)
		}
		user = &User{ID: int64(next) + 1, Name: name, CreatedAt: s.now().UTC()} //nolint:gosec // ids stay far below MaxInt64

		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("marshal user: %w", err)
		}
		if err := txn.Set(userKey(user.ID), data); err != nil {
			return fmt.Errorf("set user: %w", err)
		}
		if err := txn.Set(idxKey, []byte(strconv.FormatInt(user.ID, 10))); err != nil {
			return fmt.Errorf("set name index: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Get returns the user with id.
func (s *BadgerStore) Get(_ context.Context, id int64) (*User, error) {
	var user User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get user: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &user)
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// List returns all users ordered by name, then id.
func (s *BadgerStore) List(_ context.Context) ([]User, error) {
	var out []User
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(userKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var u User
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &u)
			}); err != nil {
				return fmt.Errorf("decode user: %w", err)
			}
			out = append(out, u)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	sortByName(out)
	return out, nil
}

// Exists reports whether id is a known user.
func (s *BadgerStore) Exists(_ context.Context, id int64) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(userKey(id))
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("check user: %w", err)
	}
}

// Preferences returns the user's preferences, or the defaults if none were
// ever set.
func (s *BadgerStore) Preferences(_ context.Context, id int64) (Preferences, error) {
	prefs := DefaultPreferences()
	err := s.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(userKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return readPrefs(txn, id, &prefs)
	})
	if err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

// SetPreferences applies a partial update, creating the record on first use.
func (s *BadgerStore) SetPreferences(_ context.Context, id int64, update PreferencesUpdate) (Preferences, error) {
	var prefs Preferences
	err := s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(userKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		current := DefaultPreferences()
		if err := readPrefs(txn, id, &current); err != nil {
			return err
		}
		prefs = update.apply(current, s.now().UTC())

		data, err := json.Marshal(prefs)
		if err != nil {
			return fmt.Errorf("marshal preferences: %w", err)
		}
		return txn.Set(prefsKey(id), data)
	})
	if err != nil {
		return Preferences{}, err
	}
	return prefs, nil
}

func readPrefs(txn *badger.Txn, id int64, prefs *Preferences) error {
	item, err := txn.Get(prefsKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get preferences: %w", err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, prefs)
	})
}

// Count returns the number of users.
func (s *BadgerStore) Count(_ context.Context) (int64, error) {
	var n int64
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(userKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// Close releases the id sequence and closes the database.
func (s *BadgerStore) Close() error {
	seqErr := s.seq.Release()
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger db: %w", err)
	}
	if seqErr != nil {
		return fmt.Errorf("release user sequence: %w", seqErr)
	}
	return nil
}

func sortByName(users []User) {
	sort.SliceStable(users, func(i, j int) bool {
		a, b := strings.ToLower(users[i].Name), strings.ToLower(users[j].Name)
		if a != b {
			return a < b
		}
		return users[i].ID < users[j].ID
	})
}
