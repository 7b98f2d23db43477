// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

package recommend

import (
	"math"
	"math/rand"
	"sort"
)

// The helpers below must be called with the engine's rng lock held.

// sampleUniform returns k distinct ids chosen uniformly, in random order.
// With k >= len(ids) every id is returned exactly once. ids is not modified.
func sampleUniform(rng *rand.Rand, ids []string, k int) []string {
	if k <= 0 || len(ids) == 0 {
		return []string{}
	}
	out := append([]string(nil), ids...)
	if k > len(out) {
		k = len(out)
	}
	// Partial Fisher-Yates: the first k slots end up a uniform sample.
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(out)-i)
		out[i], out[j] = out[j], out[i]
	}
	return out[:k]
}

// shuffle permutes ids in place.
func shuffle(rng *rand.Rand, ids []string) {
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
}

// weighted is a candidate with a non-negative selection weight.
type weighted struct {
	id     string
	weight float64
}

// orderWeighted returns all candidates in weighted random order without
// replacement (Efraimidis-Spirakis). Each positive-weight candidate gets the
// key u^(1/w), compared in log space as ln(u)/w; candidates are taken by
// descending key. Zero-weight candidates follow in uniform random order.
func orderWeighted(rng *rand.Rand, candidates []weighted) []string {
	type keyed struct {
		id  string
		key float64
	}
	positive := make([]keyed, 0, len(candidates))
	var zero []string
	for _, c := range candidates {
		if c.weight <= 0 {
			zero = append(zero, c.id)
			continue
		}
		// 1-Float64 lies in (0, 1], keeping the log finite.
		u := 1 - rng.Float64()
		positive = append(positive, keyed{id: c.id, key: math.Log(u) / c.weight})
	}
	sort.SliceStable(positive, func(i, j int) bool { return positive[i].key > positive[j].key })

	out := make([]string, 0, len(candidates))
	for _, k := range positive {
		out = append(out, k.id)
	}
	shuffle(rng, zero)
	return append(out, zero...)
}

// sampleWeighted returns up to k candidates by weighted sampling without
// replacement, positive weights first.
func sampleWeighted(rng *rand.Rand, candidates []weighted, k int) []string {
	ordered := orderWeighted(rng, candidates)
	if k < len(ordered) {
		ordered = ordered[:k]
	}
	return ordered
}

// capCandidates returns at most limit ids, subsampled uniformly when the pool
// is larger. The original order is kept for pools within the limit.
func capCandidates(rng *rand.Rand, ids []string, limit int) []string {
	if limit <= 0 || len(ids) <= limit {
		return ids
	}
	return sampleUniform(rng, ids, limit)
}
