// Package fragment defines the data types shared across the event builder
// pipeline: the wire-level Fragment, its decoded SubsystemPayload, and the
// CombinedEvent produced once a coherent set of fragments is assembled.
package fragment

// Contributor identifies the detector subsystem that produced a fragment.
// This is the buffer/codec tag space ({0,1,2}); the raw-capture decoder uses
// a distinct numeric space ({20,30}) that must be translated explicitly by
// the caller before a fragment enters the shared buffer.
type Contributor uint64

const (
	// Tracker identifies the tracking subsystem.
	Tracker Contributor = 0
	// HCal identifies the hadronic calorimeter.
	HCal Contributor = 1
	// ECal identifies the electromagnetic calorimeter.
	ECal Contributor = 2
)

// String returns a human-readable name for the contributor tag.
func (c Contributor) String() string {
	switch c {
	case Tracker:
		return "Tracker"
	case HCal:
		return "HCal"
	case ECal:
		return "ECal"
	default:
		return "Unknown"
	}
}

// Fragment is the unit enqueued into the fragment buffer. It is owned
// exclusively by the buffer from the moment Add returns until it is drained
// by TryAssemble.
type Fragment struct {
	Timestamp      int64
	LogicalEventID uint32
	Contributor    Contributor
	Payload        []byte
	Checksum       uint32
}

// Frame is a sequence of 32-bit words whose internal layout is opaque to
// this package.
type Frame struct {
	Words []uint32
}

// SubsystemPayload is the decoded per-contributor record carried inside a
// Fragment's payload bytes: a timestamp and an ordered sequence of frames.
type SubsystemPayload struct {
	Timestamp int64
	Frames    []Frame
}

// CombinedEvent is the output of the payload assembler: one record per
// drained fragment set, with at most one optional payload per contributor.
type CombinedEvent struct {
	Timestamp           int64
	LogicalEventID      uint32
	ContributorsPresent []Contributor
	Tracker             *SubsystemPayload
	HCal                *SubsystemPayload
	ECal                *SubsystemPayload
}

// Payload returns the combined event's payload for the given contributor,
// or nil if that contributor never appeared in the drained set.
func (e *CombinedEvent) Payload(c Contributor) *SubsystemPayload {
	switch c {
	case Tracker:
		return e.Tracker
	case HCal:
		return e.HCal
	case ECal:
		return e.ECal
	default:
		return nil
	}
}

// HasContributor reports whether c appears in ContributorsPresent.
func (e *CombinedEvent) HasContributor(c Contributor) bool {
	for _, present := range e.ContributorsPresent {
		if present == c {
			return true
		}
	}
	return false
}

// IsComplete reports whether all three required contributors are present.
// Forced (timeout) assemblies may produce events for which this is false;
// such events are still emitted, tagged partial by their ContributorsPresent.
func (e *CombinedEvent) IsComplete() bool {
	return e.HasContributor(Tracker) && e.HasContributor(HCal) && e.HasContributor(ECal)
}
