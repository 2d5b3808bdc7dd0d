package decoder

import (
	"encoding/binary"

	"github.com/c360/eventbuilder/fragment"
	"github.com/c360/eventbuilder/metric"
)

// Option configures a decode pass using the functional options pattern.
type Option func(*decodeOptions)

type decodeOptions struct {
	metrics *metric.Metrics
}

// WithMetrics records frames decoded, sync loss, and out-of-range frame
// rejections against m. If m is nil, this option is ignored.
func WithMetrics(m *metric.Metrics) Option {
	return func(o *decodeOptions) {
		if m != nil {
			o.metrics = m
		}
	}
}

func applyOptions(opts []Option) *decodeOptions {
	o := &decodeOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func contributorLabel(raw int) string {
	switch raw {
	case RawHCal:
		return "hcal"
	case RawECal:
		return "ecal"
	default:
		return "unknown"
	}
}

// Raw-capture contributor tags. Distinct from fragment.Contributor; see
// RouteContributor for the explicit bridge between the two namespaces.
const (
	RawHCal = 20
	RawECal = 30
)

const (
	syncLo          = 24
	syncHi          = 5000
	frameLo         = 24
	frameHi         = 10000
	rogueHeaderSize = 8
	fixedFrameBytes = 24 // rogue_headers + raw_system_id + pulse_id + event_id
)

// Frame is one decoded raw-capture frame, carried in its raw namespace
// (Contributor is 20 or 30, never a fragment.Contributor).
type Frame struct {
	FrameSize   uint32
	RawSystemID uint32
	Contributor int
	PulseID     uint64
	EventID     uint32
	Payload     []byte
}

// RouteContributor maps a raw-capture contributor tag to its fragment-space
// equivalent (RawHCal to fragment.HCal, RawECal to fragment.ECal). Tags
// outside {RawHCal, RawECal} are not routed downstream and ok is false.
func RouteContributor(raw int) (contributor fragment.Contributor, ok bool) {
	switch raw {
	case RawHCal:
		return fragment.HCal, true
	case RawECal:
		return fragment.ECal, true
	default:
		return 0, false
	}
}

// sync scans buf starting at pos for the first 4-byte little-endian word
// satisfying the sync window, returning the offset of that word. It advances
// one byte at a time on failure (read 4, rewind 3), matching the byte-level
// sliding window of the original decoder.
func sync(buf []byte, pos int) (int, bool) {
	for pos+4 <= len(buf) {
		v := binary.LittleEndian.Uint32(buf[pos : pos+4])
		if v > syncLo && v < syncHi && v&0xFFFF0000 == 0 {
			return pos, true
		}
		pos++
	}
	return 0, false
}

// nextFrame parses one frame starting at pos, which must already be
// sync-aligned to a frame_size word. It returns the parsed frame, the
// position immediately following it, and whether a frame was produced.
// A frame whose size falls outside the validation window is not produced,
// and the returned position is pos+1: the caller slides by one byte and
// tries nextFrame again there.
func nextFrame(buf []byte, pos int) (Frame, int, bool) {
	if pos+4 > len(buf) {
		return Frame{}, pos, false
	}
	frameSize := binary.LittleEndian.Uint32(buf[pos : pos+4])
	if frameSize < frameLo || frameSize > frameHi {
		return Frame{}, pos + 1, false
	}

	cursor := pos + 4
	if cursor+rogueHeaderSize > len(buf) {
		return Frame{}, len(buf), false
	}
	cursor += rogueHeaderSize

	if cursor+4 > len(buf) {
		return Frame{}, len(buf), false
	}
	rawSystemID := binary.BigEndian.Uint32(buf[cursor : cursor+4])
	cursor += 4

	if cursor+8 > len(buf) {
		return Frame{}, len(buf), false
	}
	pulseID := binary.BigEndian.Uint64(buf[cursor : cursor+8])
	cursor += 8

	if cursor+4 > len(buf) {
		return Frame{}, len(buf), false
	}
	eventID := binary.BigEndian.Uint32(buf[cursor : cursor+4])
	cursor += 4

	payloadLen := int(frameSize) - fixedFrameBytes
	if payloadLen < 0 || cursor+payloadLen > len(buf) {
		return Frame{}, len(buf), false
	}
	payload := buf[cursor : cursor+payloadLen]
	cursor += payloadLen

	contributor := int((rawSystemID >> 16) & 0xFF)

	return Frame{
		FrameSize:   frameSize,
		RawSystemID: rawSystemID,
		Contributor: contributor,
		PulseID:     pulseID,
		EventID:     eventID,
		Payload:     payload,
	}, cursor, true
}

// decode drives the shared sync/validate loop over buf, invoking sink for
// every frame that parses within the validation window, regardless of its
// contributor tag. sink is responsible for routing on Contributor.
//
// sync runs exactly once, to find the first frame boundary. After that,
// a frame rejected by the (wider) validation window is not an error: the
// loop slides forward one byte and retries directly, without re-applying
// sync's narrower window. This mirrors the original decoder, which only
// resyncs once and thereafter treats out-of-range frame sizes as a
// byte-level slide within its main read loop.
func decode(buf []byte, sink func(Frame), opts ...Option) {
	o := applyOptions(opts)

	startPos, ok := sync(buf, 0)
	if !ok {
		return
	}
	if o.metrics != nil && startPos > 0 {
		o.metrics.SyncLossTotal.Inc()
	}

	pos := startPos
	for {
		frame, next, ok := nextFrame(buf, pos)
		if !ok {
			if next <= pos {
				return // remaining bytes can't hold a full frame; stream ends here
			}
			if o.metrics != nil && next == pos+1 {
				// next advanced by exactly one byte: the declared frame_size
				// fell outside the validation window, not a truncated buffer.
				o.metrics.FrameOutOfRange.Inc()
			}
			pos = next
			continue
		}

		if o.metrics != nil {
			o.metrics.FramesDecoded.WithLabelValues(contributorLabel(frame.Contributor)).Inc()
		}
		sink(frame)
		pos = next
	}
}
