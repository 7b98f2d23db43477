// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package models

// ArticlesQuery holds the query parameters of GET /api/v1/articles.
type ArticlesQuery struct {
	Algorithm string `json:"algorithm" validate:"omitempty,policy"`
	Source    string `json:"source" validate:"omitempty,max=32,printable"`
	UserID    int64  `json:"user_id" validate:"gte=0"`
	Category  string `json:"category" validate:"omitempty,max=64,printable"`
	Limit     int    `json:"limit" validate:"gte=0"`
	SessionID string `json:"session_id" validate:"omitempty,max=64,printable"`
}

// ClickRequest is the body of POST /api/v1/clicks.
type ClickRequest struct {
	UserID     int64    `json:"user_id" validate:"gt=0"`
	ArticleID  string   `json:"article_id" validate:"required_without=Title,omitempty,max=512,printable"`
	Title      string   `json:"title" validate:"omitempty,max=512,printable"`
	Categories []string `json:"categories" validate:"max=20,dive,max=64,printable"`
}

// CreateUserRequest is the body of POST /api/v1/users.
type CreateUserRequest struct {
	Name string `json:"name" validate:"required,max=64,printable"`
}

// PreferencesRequest is the body of PUT /api/v1/users/{userID}/preferences.
// Omitted fields are left unchanged.
type PreferencesRequest struct {
	Algorithm        *string `json:"algorithm" validate:"omitempty,policy"`
	SelectedCategory *string `json:"selected_category" validate:"omitempty,max=64,printable"`
}
