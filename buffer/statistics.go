package buffer

// Statistics is a point-in-time snapshot of a TimeIndexedBuffer's
// counters, taken under its lock.
type Statistics struct {
	BucketCount     int
	FragmentsAdded  int64
	Drains          int64
	ForcedDrains    int64
	OldestTimestamp int64
}
