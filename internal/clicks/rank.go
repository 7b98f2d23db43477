// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package clicks

import (
	"math"
	"sort"
	"time"
)

// Decay returns the weight of a click of the given age. Negative ages
// (clock skew) count as zero.
func Decay(age, halfLife time.Duration) float64 {
	if age < 0 {
		age = 0
	}
	if halfLife <= 0 {
		halfLife = DefaultHalfLife
	}
	return math.Pow(0.5, float64(age)/float64(halfLife))
}

// rankCategories aggregates decayed weights per category and returns the
// limit highest. limit <= 0 returns all.
func rankCategories(events []Event, now time.Time, halfLife time.Duration, limit int) []CategoryWeight {
	byCategory := make(map[string]*CategoryWeight)
	for i := range events {
		e := &events[i]
		w := Decay(now.Sub(e.Timestamp), halfLife)
		for _, c := range e.Categories {
			cw, ok := byCategory[c]
			if !ok {
				cw = &CategoryWeight{Category: c}
				byCategory[c] = cw
			}
			cw.Weight += w
			if e.Timestamp.After(cw.LastSeen) {
				cw.LastSeen = e.Timestamp
			}
		}
	}

	out := make([]CategoryWeight, 0, len(byCategory))
	for _, cw := range byCategory {
		out = append(out, *cw)
	}
	sortWeights(out)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// sortWeights orders by weight desc, then most recent occurrence, then name.
func sortWeights(ws []CategoryWeight) {
	sort.Slice(ws, func(i, j int) bool {
		if ws[i].Weight != ws[j].Weight {
			return ws[i].Weight > ws[j].Weight
		}
		if !ws[i].LastSeen.Equal(ws[j].LastSeen) {
			return ws[i].LastSeen.After(ws[j].LastSeen)
		}
		return ws[i].Category < ws[j].Category
	})
}
