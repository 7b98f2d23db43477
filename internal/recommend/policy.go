// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package recommend

import (
	"errors"
	"fmt"
	"strings"
)

// Policy names a selection strategy.
type Policy string

// Supported policies.
const (
	PolicyRandom    Policy = "random"
	PolicyCategory  Policy = "category"
	PolicyJeopardy  Policy = "jeopardy"
	PolicyUserBased Policy = "user_based"
)

var (
	// ErrUnknownPolicy is the outcome for an unsupported policy name.
	ErrUnknownPolicy = errors.New("unknown selection policy")

	// ErrEmptyCategory is the outcome when no unserved article matches the
	// category filter.
	ErrEmptyCategory = errors.New("no articles match the category filter")
)

// Policies returns the supported policies in display order.
func Policies() []Policy {
	return []Policy{PolicyRandom, PolicyCategory, PolicyJeopardy, PolicyUserBased}
}

// ParsePolicy resolves a policy name case-insensitively. "user-based" is
// accepted as a spelling of user_based.
func ParsePolicy(name string) (Policy, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for _, p := range Policies() {
		if string(p) == normalized {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
}

// OutcomeCode returns the stable code of a policy-level outcome, or "" for
// a normal batch.
func OutcomeCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnknownPolicy):
		return "UNKNOWN_POLICY"
	case errors.Is(err, ErrEmptyCategory):
		return "EMPTY_CATEGORY"
	default:
		return "ERROR"
	}
}
