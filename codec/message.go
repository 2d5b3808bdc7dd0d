// Package codec implements the wire framing used between fragment
// producers and the ingest server, plus the length-prefixed decoder for
// the per-subsystem payload carried inside a fragment.
package codec

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/c360/eventbuilder/errors"
	"github.com/c360/eventbuilder/fragment"
)

// Message is the decoded form of one framed fragment message, before its
// payload bytes have been interpreted by DecodePayload.
type Message struct {
	Timestamp      int64
	LogicalEventID uint32
	Contributor    fragment.Contributor
	Payload        []byte
}

// wire field widths; every field is encoded little-endian.
const (
	headerSize  = 8 + 4 + 8 + 8 // timestamp + logical_event_id + contributor + payload_size
	trailerSize = 4             // checksum
)

// checksum returns the CRC-32 of payload using the reflected IEEE
// polynomial (0xEDB88320), matching hash/crc32.IEEE.
func checksum(payload []byte) uint32 {
	return crc32.ChecksumIEEE(payload)
}

// EncodeMessage writes msg to w in the wire format: fixed header, payload
// bytes, then a CRC-32 trailer over the payload.
func EncodeMessage(w io.Writer, msg Message) error {
	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint64(header[0:8], uint64(msg.Timestamp))
	binary.LittleEndian.PutUint32(header[8:12], msg.LogicalEventID)
	binary.LittleEndian.PutUint64(header[12:20], uint64(msg.Contributor))
	binary.LittleEndian.PutUint64(header[20:28], uint64(len(msg.Payload)))

	if _, err := w.Write(header); err != nil {
		return errors.WrapTransient(err, "codec", "EncodeMessage", "write header")
	}
	if len(msg.Payload) > 0 {
		if _, err := w.Write(msg.Payload); err != nil {
			return errors.WrapTransient(err, "codec", "EncodeMessage", "write payload")
		}
	}

	trailer := make([]byte, trailerSize)
	binary.LittleEndian.PutUint32(trailer, checksum(msg.Payload))
	if _, err := w.Write(trailer); err != nil {
		return errors.WrapTransient(err, "codec", "EncodeMessage", "write trailer")
	}
	return nil
}

// ReadMessage reads one framed message from r: the fixed header, exactly
// payload_size bytes of payload, then the CRC-32 trailer. Each read is
// blocking and all-or-error, per the ingest server's framing contract.
//
// On CRC mismatch, ReadMessage returns an invalid-classified error and the
// caller must drop the connection without enqueueing anything decoded so
// far — no partial state is retained.
func ReadMessage(r io.Reader) (Message, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return Message{}, errors.WrapTransient(err, "codec", "ReadMessage", "read header")
	}

	msg := Message{
		Timestamp:      int64(binary.LittleEndian.Uint64(header[0:8])),
		LogicalEventID: binary.LittleEndian.Uint32(header[8:12]),
		Contributor:    fragment.Contributor(binary.LittleEndian.Uint64(header[12:20])),
	}
	payloadSize := binary.LittleEndian.Uint64(header[20:28])

	payload := make([]byte, payloadSize)
	if payloadSize > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return Message{}, errors.WrapTransient(err, "codec", "ReadMessage", "read payload")
		}
	}
	msg.Payload = payload

	trailer := make([]byte, trailerSize)
	if _, err := io.ReadFull(r, trailer); err != nil {
		return Message{}, errors.WrapTransient(err, "codec", "ReadMessage", "read trailer")
	}
	want := binary.LittleEndian.Uint32(trailer)
	got := checksum(payload)
	if want != got {
		return Message{}, errors.WrapInvalid(errors.ErrChecksumMismatch, "codec", "ReadMessage", "verify checksum")
	}

	return msg, nil
}

// ToFragment converts a decoded Message into a Fragment, stamping its
// verified checksum. ReadMessage must have already validated the CRC.
func (m Message) ToFragment() fragment.Fragment {
	return fragment.Fragment{
		Timestamp:      m.Timestamp,
		LogicalEventID: m.LogicalEventID,
		Contributor:    m.Contributor,
		Payload:        m.Payload,
		Checksum:       checksum(m.Payload),
	}
}

// VerifyChecksum reports whether trailer matches the CRC-32 of payload.
// Exposed for callers (e.g. simulated producers) that want to pre-check a
// buffer before sending it, without round-tripping through a Reader.
func VerifyChecksum(payload []byte, trailer uint32) bool {
	return checksum(payload) == trailer
}
