// Package buffer implements the fragment pipeline's time-indexed buffer: a
// multimap from timestamp to the fragments that arrived at that instant,
// supporting coherence-window range queries and an atomic drain that never
// returns overlapping fragments across concurrent callers.
//
// Unlike pkg/worker's fixed-capacity pool primitives, TimeIndexedBuffer has
// no capacity bound — it grows with in-flight timestamps and shrinks only
// when TryAssemble drains a bucket.
package buffer
