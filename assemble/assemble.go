package assemble

import (
	"github.com/c360/eventbuilder/codec"
	"github.com/c360/eventbuilder/errors"
	"github.com/c360/eventbuilder/fragment"
)

// Build merges a drained set of fragments into a CombinedEvent.
//
// The timestamp is taken from the first fragment in frags, regardless of
// its contributor. ContributorsPresent records one entry per fragment in
// drain order, duplicates included. For each contributor, the first
// fragment of that type initializes the subsystem payload; every
// subsequent fragment of the same type has its frames appended to it.
// frags must be non-empty; the caller (the builder loop) never calls Build
// on an empty drained set.
func Build(frags []fragment.Fragment) (fragment.CombinedEvent, error) {
	event := fragment.CombinedEvent{
		Timestamp:           frags[0].Timestamp,
		LogicalEventID:      frags[0].LogicalEventID,
		ContributorsPresent: make([]fragment.Contributor, 0, len(frags)),
	}

	for _, f := range frags {
		event.ContributorsPresent = append(event.ContributorsPresent, f.Contributor)

		decoded, err := codec.DecodePayload(f.Payload)
		if err != nil {
			return fragment.CombinedEvent{}, errors.WrapInvalid(errors.ErrAssemblyFailed, "assemble", "Build", "decode "+f.Contributor.String()+" payload")
		}

		existing := event.Payload(f.Contributor)
		if existing == nil {
			appendPayload(&event, f.Contributor, decoded)
			continue
		}
		existing.Frames = append(existing.Frames, decoded.Frames...)
	}

	return event, nil
}

func appendPayload(event *fragment.CombinedEvent, c fragment.Contributor, payload fragment.SubsystemPayload) {
	switch c {
	case fragment.Tracker:
		event.Tracker = &payload
	case fragment.HCal:
		event.HCal = &payload
	case fragment.ECal:
		event.ECal = &payload
	}
}
