// Package planner implements the adaptive query planner: ε-greedy
// plan selection over a bounded per-QueryKey rolling window, a
// meet-in-the-middle path splitter, and a bounded snapshot-digest
// memoization map for popular as-of timestamps. All planner state is
// held in memory and does not survive a process restart.
package planner
