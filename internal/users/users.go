// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

// Package users stores reader accounts and their feed preferences.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultAlgorithm is the feed algorithm for users without a preference.
const DefaultAlgorithm = "random"

// MaxNameLength bounds user names, in characters.
const MaxNameLength = 64

var (
	// ErrNotFound is returned for an unknown user id.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateName is returned when a name is already taken, ignoring case.
	ErrDuplicateName = errors.New("user name already exists")

	// ErrInvalidName is returned for an empty or oversized name.
	ErrInvalidName = errors.New("invalid user name")
)

// User is a reader account.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Preferences are a user's feed defaults.
type Preferences struct {
	Algorithm        string    `json:"algorithm"`
	SelectedCategory string    `json:"selected_category,omitempty"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
}

// PreferencesUpdate is a partial update; nil fields are left unchanged.
type PreferencesUpdate struct {
	Algorithm        *string
	SelectedCategory *string
}

// DefaultPreferences returns the preferences of a user who never set any.
func DefaultPreferences() Preferences {
	return Preferences{Algorithm: DefaultAlgorithm}
}

// apply merges u into p.
func (u PreferencesUpdate) apply(p Preferences, now time.Time) Preferences {
	if u.Algorithm != nil {
		p.Algorithm = *u.Algorithm
	}
	if u.SelectedCategory != nil {
		p.SelectedCategory = strings.TrimSpace(*u.SelectedCategory)
	}
	if p.Algorithm == "" {
		p.Algorithm = DefaultAlgorithm
	}
	p.UpdatedAt = now
	return p
}

// Store persists users and preferences.
type Store interface {
	Create(ctx context.Context, name string) (*User, error)
	Get(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Preferences(ctx context.Context, id int64) (Preferences, error)
	SetPreferences(ctx context.Context, id int64, update PreferencesUpdate) (Preferences, error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// NormalizeName trims name and validates it.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidName, MaxNameLength)
	}
	return name, nil
}

func nameKey(name string) string {
	return strings.ToLower(name)
}
