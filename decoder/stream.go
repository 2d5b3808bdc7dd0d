package decoder

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/c360/eventbuilder/errors"
)

// CSVRecord is one parsed line from a replay stream: a debugging/replay
// aid distinct from the raw-capture binary format, used to feed recorded
// fragments back through the ingest path without a capture file.
type CSVRecord struct {
	Timestamp   int64
	EventID     uint32
	Contributor uint64
	Payload     []byte
}

// StreamCSV reads lines of "timestamp,event_id,contributor,payload_hex"
// from r and sends one CSVRecord per line to out. Blank lines are skipped.
// StreamCSV does not close out.
func StreamCSV(r io.Reader, out chan<- CSVRecord) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		rec, err := parseCSVLine(text)
		if err != nil {
			return errors.WrapInvalid(err, "decoder", "StreamCSV", "parse line "+strconv.Itoa(line))
		}
		out <- rec
	}
	if err := scanner.Err(); err != nil {
		return errors.WrapTransient(err, "decoder", "StreamCSV", "read replay stream")
	}
	return nil
}

func parseCSVLine(text string) (CSVRecord, error) {
	fields := strings.Split(text, ",")
	if len(fields) != 4 {
		return CSVRecord{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}

	ts, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return CSVRecord{}, err
	}
	eventID, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return CSVRecord{}, err
	}
	contributor, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return CSVRecord{}, err
	}
	payload, err := hex.DecodeString(fields[3])
	if err != nil {
		return CSVRecord{}, err
	}

	return CSVRecord{
		Timestamp:   ts,
		EventID:     uint32(eventID),
		Contributor: contributor,
		Payload:     payload,
	}, nil
}
