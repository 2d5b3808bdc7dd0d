package buffer

import (
	"sort"
	"sync"

	"github.com/c360/eventbuilder/fragment"
)

// TimeIndexedBuffer is a time-indexed multimap of fragments keyed by
// timestamp, supporting coherence-window range queries and atomic
// drain-on-assembly. It is not a fixed-capacity ring: it grows with the
// stream and shrinks only when a drain removes a bucket.
//
// All operations run under a single mutex; no iteration over buckets or
// keys ever escapes the lock.
type TimeIndexedBuffer struct {
	mu      sync.Mutex
	buckets map[int64][]fragment.Fragment
	keys    []int64 // sorted ascending, kept in sync with buckets

	fragmentsAdded int64
	drains         int64
	forcedDrains   int64

	metrics *bufferMetrics
}

// New creates an empty TimeIndexedBuffer. Metrics registration failures
// (via WithMetrics) are silently ignored and leave the buffer without
// metrics; the buffer is always usable without its optional metrics.
func New(opts ...Option) *TimeIndexedBuffer {
	o := applyOptions(opts...)

	b := &TimeIndexedBuffer{
		buckets: make(map[int64][]fragment.Fragment),
	}

	if o.metricsReg != nil && o.metricsPrefix != "" {
		m, err := newBufferMetrics(o.metricsReg, o.metricsPrefix)
		if err == nil {
			b.metrics = m
		}
	}

	return b
}

// Add takes ownership of f and appends it under f.Timestamp. Fragments
// sharing a timestamp preserve their arrival order within that bucket.
func (b *TimeIndexedBuffer) Add(f fragment.Fragment) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.buckets[f.Timestamp]; !exists {
		b.insertKey(f.Timestamp)
	}
	b.buckets[f.Timestamp] = append(b.buckets[f.Timestamp], f)
	b.fragmentsAdded++

	if b.metrics != nil {
		b.metrics.recordAdd(len(b.keys))
	}
}

// insertKey inserts ts into the sorted key slice via binary search. Caller
// must hold b.mu.
func (b *TimeIndexedBuffer) insertKey(ts int64) {
	i := sort.Search(len(b.keys), func(i int) bool { return b.keys[i] >= ts })
	b.keys = append(b.keys, 0)
	copy(b.keys[i+1:], b.keys[i:])
	b.keys[i] = ts
}

// HasExpired reports whether the oldest stored timestamp is strictly less
// than referenceTime - window.
func (b *TimeIndexedBuffer) HasExpired(referenceTime, window int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.keys) == 0 {
		return false
	}
	return b.keys[0] < referenceTime-window
}

// TryAssemble attempts to drain a coherent set of fragments.
//
// When force is false, the anchor is referenceTime and the drain succeeds
// only if the collected contributor set contains Tracker, HCal, and ECal.
// When force is true, the anchor is the oldest stored timestamp and the
// completeness gate is skipped — the oldest bucket is drained regardless
// of which contributors are present.
//
// The whole operation runs under the buffer's lock: no Add call can
// observe a partial drain, and no two TryAssemble calls can return
// overlapping fragments.
func (b *TimeIndexedBuffer) TryAssemble(referenceTime, window int64, force bool) ([]fragment.Fragment, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.keys) == 0 {
		return nil, false
	}

	var anchor int64
	if force {
		anchor = b.keys[0]
	} else {
		anchor = referenceTime
	}
	lo, hi := anchor-window, anchor+window

	start := sort.Search(len(b.keys), func(i int) bool { return b.keys[i] >= lo })

	seen := make(map[fragment.Contributor]bool, 3)
	var collected []fragment.Fragment
	end := start
	for end < len(b.keys) && b.keys[end] <= hi {
		for _, f := range b.buckets[b.keys[end]] {
			collected = append(collected, f)
			seen[f.Contributor] = true
		}
		end++
	}

	if len(collected) == 0 {
		return nil, false
	}

	if !force {
		if !seen[fragment.Tracker] || !seen[fragment.HCal] || !seen[fragment.ECal] {
			return nil, false
		}
	}

	for i := start; i < end; i++ {
		delete(b.buckets, b.keys[i])
	}
	b.keys = append(b.keys[:start], b.keys[end:]...)

	b.drains++
	if force {
		b.forcedDrains++
	}
	if b.metrics != nil {
		b.metrics.recordDrain(force, len(b.keys))
	}

	return collected, true
}

// Stats returns a snapshot of the buffer's counters and current size.
func (b *TimeIndexedBuffer) Stats() Statistics {
	b.mu.Lock()
	defer b.mu.Unlock()

	var oldest int64
	if len(b.keys) > 0 {
		oldest = b.keys[0]
	}

	return Statistics{
		BucketCount:     len(b.keys),
		FragmentsAdded:  b.fragmentsAdded,
		Drains:          b.drains,
		ForcedDrains:    b.forcedDrains,
		OldestTimestamp: oldest,
	}
}

// Close releases the buffer's metrics registration, if any. The buffer
// itself holds no other resources.
func (b *TimeIndexedBuffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.metrics != nil {
		b.metrics.unregister()
	}
	return nil
}
