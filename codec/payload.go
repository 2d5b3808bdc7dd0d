package codec

import (
	"encoding/binary"

	"github.com/c360/eventbuilder/errors"
	"github.com/c360/eventbuilder/fragment"
)

const (
	payloadHeaderSize = 8 + 4 // timestamp + num_frames
	frameHeaderSize   = 4     // num_words
	wordSize          = 4
)

// DecodePayload decodes a SubsystemPayload from buf:
//
//	[ timestamp  : i64 ]
//	[ num_frames : u32 ]
//	  for each frame:
//	    [ num_words : u32 ]
//	    [ words     : num_words x u32 ]
//
// All fields are little-endian. DecodePayload returns ErrBufferUnderrun if
// any read would exceed buf, and never allocates a frame's word slice
// before that frame's byte range has been confirmed to fit in buf.
func DecodePayload(buf []byte) (fragment.SubsystemPayload, error) {
	if len(buf) < payloadHeaderSize {
		return fragment.SubsystemPayload{}, errors.WrapInvalid(errors.ErrBufferUnderrun, "codec", "DecodePayload", "read header")
	}

	payload := fragment.SubsystemPayload{
		Timestamp: int64(binary.LittleEndian.Uint64(buf[0:8])),
	}
	numFrames := binary.LittleEndian.Uint32(buf[8:12])
	offset := payloadHeaderSize

	payload.Frames = make([]fragment.Frame, 0)
	for i := uint32(0); i < numFrames; i++ {
		if len(buf)-offset < frameHeaderSize {
			return fragment.SubsystemPayload{}, errors.WrapInvalid(errors.ErrBufferUnderrun, "codec", "DecodePayload", "read frame header")
		}
		numWords := binary.LittleEndian.Uint32(buf[offset : offset+4])
		offset += frameHeaderSize

		frameBytes := int(numWords) * wordSize
		if len(buf)-offset < frameBytes {
			return fragment.SubsystemPayload{}, errors.WrapInvalid(errors.ErrBufferUnderrun, "codec", "DecodePayload", "read frame words")
		}

		words := make([]uint32, numWords)
		for w := uint32(0); w < numWords; w++ {
			words[w] = binary.LittleEndian.Uint32(buf[offset : offset+wordSize])
			offset += wordSize
		}
		payload.Frames = append(payload.Frames, fragment.Frame{Words: words})
	}

	return payload, nil
}

// EncodePayload is the inverse of DecodePayload, used by test clients and
// the simulated-producer CLI path to build fragment payloads.
func EncodePayload(payload fragment.SubsystemPayload) []byte {
	size := payloadHeaderSize
	for _, f := range payload.Frames {
		size += frameHeaderSize + len(f.Words)*wordSize
	}

	buf := make([]byte, size)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(payload.Timestamp))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(len(payload.Frames)))

	offset := payloadHeaderSize
	for _, f := range payload.Frames {
		binary.LittleEndian.PutUint32(buf[offset:offset+4], uint32(len(f.Words)))
		offset += frameHeaderSize
		for _, word := range f.Words {
			binary.LittleEndian.PutUint32(buf[offset:offset+wordSize], word)
			offset += wordSize
		}
	}
	return buf
}
