// Package ledger holds the shared shape of the request state machines:
// game lifecycle, game participation and friend relations are all a
// request ledger with a fixed transition graph and terminal states.
package ledger

import "time"

// Graph enumerates the allowed transitions of a request ledger.
type Graph[S comparable] map[S][]S

// Can reports whether from → to is an allowed transition.
func (g Graph[S]) Can(from, to S) bool {
	for _, next := range g[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether s has no outgoing transitions.
func (g Graph[S]) Terminal(s S) bool { return len(g[s]) == 0 }

// Oldest returns the index of the entry with the earliest timestamp among
// those matching pred, or -1. Waitlist promotion uses it to pick the next
// in line deterministically by join time, never by slice order.
func Oldest[T any](items []T, pred func(T) bool, at func(T) time.Time) int {
	best := -1
	for i := range items {
		if !pred(items[i]) {
			continue
		}
		if best == -1 || at(items[i]).Before(at(items[best])) {
			best = i
		}
	}
	return best
}
