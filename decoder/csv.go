package decoder

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/c360/eventbuilder/errors"
)

const csvHeader = "timestamp,orbit,bx,event,subsystem,raw_hex_ID,contributorID,channel,adc_tm1,adc"

// DecodeAndSave reads a raw-capture stream from r and writes the decoded
// ADC samples for contributors RawHCal and RawECal as CSV to w, one line
// per sample pair. Frames belonging to other contributors are consumed and
// skipped without output.
func DecodeAndSave(r io.Reader, w io.Writer, opts ...Option) error {
	buf, err := io.ReadAll(r)
	if err != nil {
		return errors.WrapTransient(err, "decoder", "DecodeAndSave", "read capture stream")
	}

	if _, err := fmt.Fprintln(w, csvHeader); err != nil {
		return errors.WrapTransient(err, "decoder", "DecodeAndSave", "write header")
	}

	var writeErr error
	decode(buf, func(f Frame) {
		if writeErr != nil {
			return
		}
		if _, ok := RouteContributor(f.Contributor); !ok {
			return
		}
		writeErr = writeSamples(w, f)
	}, opts...)
	return writeErr
}

// writeSamples emits one CSV line per consecutive little-endian uint16 pair
// in f.Payload, matching the test.csv column layout.
func writeSamples(w io.Writer, f Frame) error {
	numSamples := len(f.Payload) / 4
	for i := 0; i < numSamples; i++ {
		off := i * 4
		adcTm1 := binary.LittleEndian.Uint16(f.Payload[off : off+2])
		adc := binary.LittleEndian.Uint16(f.Payload[off+2 : off+4])

		_, err := fmt.Fprintf(w, "%d,0,0,%d,%d,%x,%d,%d,%d,%d,-1,0\n",
			f.PulseID, f.EventID, f.Contributor, f.RawSystemID, f.Contributor, i, adcTm1, adc)
		if err != nil {
			return errors.WrapTransient(err, "decoder", "writeSamples", "write csv line")
		}
	}
	return nil
}
