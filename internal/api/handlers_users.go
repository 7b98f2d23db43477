// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package api

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/wikifeed/internal/models"
	"github.com/tomtom215/wikifeed/internal/recommend"
	"github.com/tomtom215/wikifeed/internal/source"
	"github.com/tomtom215/wikifeed/internal/users"
)

// ListUsers returns all users ordered by name.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	list, err := h.users.List(ctx)
	if err != nil {
		respondFromError(w, r, err)
		return
	}
	if list == nil {
		list = []users.User{}
	}
	respondData(w, r, http.StatusOK, list, start)
}

// CreateUser creates a user. Names are unique case-insensitively.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req models.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if !validateRequest(w, r, &req) {
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	user, err := h.users.Create(ctx, req.Name)
	if err != nil {
		respondFromError(w, r, err)
		return
	}
	respondData(w, r, http.StatusCreated, user, start)
}

// GetUser returns a user with their preferences and click count.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	user, err := h.users.Get(ctx, userID)
	if err != nil {
		respondFromError(w, r, err)
		return
	}
	prefs, err := h.users.Preferences(ctx, userID)
	if err != nil {
		respondFromError(w, r, err)
		return
	}
	stats, err := h.tracker.Stats(ctx, userID)
	if err != nil {
		respondFromError(w, r, err)
		return
	}

	respondData(w, r, http.StatusOK, models.UserDetail{
		User:        *user,
		Preferences: prefs,
		ClickCount:  stats.TotalCount,
	}, start)
}

// UpdatePreferences applies a partial preference update. The algorithm is
// stored in its canonical spelling.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, err := userIDParam(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
		return
	}

	var req models.PreferencesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	update := users.PreferencesUpdate{SelectedCategory: req.SelectedCategory}
	if req.Algorithm != nil {
		policy, err := recommend.ParsePolicy(*req.Algorithm)
		if err != nil {
			respondFromError(w, r, err)
			return
		}
		canonical := string(policy)
		update.Algorithm = &canonical
	}

	ctx, cancel := h.requestContext(r.Context())
	defer cancel()

	prefs, err := h.users.SetPreferences(ctx, userID, update)
	if err != nil {
		respondFromError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, prefs, start)
}

// Categories lists the topical categories with their jeopardy weights, plus
// the selectable algorithms. Categories that only appear in the weight table
// are listed after the built-in ones, alphabetically.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	seen := make(map[string]bool, len(source.Categories)+1)
	infos := make([]models.CategoryInfo, 0, len(source.Categories)+1)
	add := func(name string) {
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		infos = append(infos, models.CategoryInfo{Name: name, JeopardyWeight: h.weight(name)})
	}
	for _, name := range source.Categories {
		add(name)
	}
	add(source.CategoryGeneral)

	extra := make([]string, 0)
	for name := range h.weights {
		if !seen[strings.ToLower(name)] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	for _, name := range extra {
		add(name)
	}

	policies := recommend.Policies()
	algorithms := make([]string, len(policies))
	for i, p := range policies {
		algorithms[i] = string(p)
	}

	respondData(w, r, http.StatusOK, models.CategoriesResponse{
		Categories: infos,
		Algorithms: algorithms,
	}, start)
}

// weight looks a category up case-insensitively.
func (h *Handler) weight(name string) float64 {
	if w, ok := h.weights[name]; ok {
		return w
	}
	for category, w := range h.weights {
		if strings.EqualFold(category, name) {
			return w
		}
	}
	return 0
}
