// Wikifeed - Encyclopedia Article Feed and Selection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/wikifeed

// Package recommend selects the next batch of articles for a feed.
//
// # Policies
//
// Four selection policies are supported:
//
//   - random: a uniform sample of the unserved pool
//   - category: a uniform sample of unserved articles tagged with any of
//     the requested categories (compared case-insensitively)
//   - jeopardy: weighted sampling without replacement, where an article's
//     weight is the sum of the configured weights of its categories;
//     zero-weight articles come last in random order
//   - user_based: a personal share of the page drawn from the reader's top
//     categories, the rest filled at random, the whole batch shuffled
//
// A reader with fewer than Config.MinClicks clicks, or an anonymous request,
// gets exactly the batch the random policy would have produced from the
// same pool and random state.
//
// # Outcomes
//
// Policy-level outcomes are values, not failures: an unknown policy name
// yields a Batch with Err set to ErrUnknownPolicy, and a category filter that
// matches nothing yields ErrEmptyCategory. The error return of SelectBatch is
// reserved for an unreachable source and context cancellation.
//
// # Usage
//
//	engine, err := recommend.NewEngine(recommend.DefaultConfig(), clickStore)
//	batch, err := engine.SelectBatch(ctx, recommend.Request{
//		Policy:   "jeopardy",
//		PageSize: 20,
//		Catalog:  index,
//		Served:   served,
//	})
package recommend
