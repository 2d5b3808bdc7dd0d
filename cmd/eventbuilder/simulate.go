package main

import (
	"fmt"
	"net"
	"os"

	"github.com/c360/eventbuilder/codec"
	"github.com/c360/eventbuilder/decoder"
	"github.com/c360/eventbuilder/fragment"
)

// runSimulate replays a CSV fragment stream at a running ingest server,
// one dialed connection per record, for exercising the pipeline end to
// end without a real detector capture source.
func runSimulate(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: %s simulate <addr> <csv-file>", appName)
	}
	addr, path := args[0], args[1]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	records := make(chan decoder.CSVRecord, 16)
	errCh := make(chan error, 1)
	go func() {
		errCh <- decoder.StreamCSV(f, records)
		close(records)
	}()

	sent := 0
	for rec := range records {
		if err := sendRecord(addr, rec); err != nil {
			return fmt.Errorf("send record %d: %w", sent, err)
		}
		sent++
	}

	if err := <-errCh; err != nil {
		return fmt.Errorf("stream %s: %w", path, err)
	}

	fmt.Fprintf(os.Stdout, "sent %d fragments to %s\n", sent, addr)
	return nil
}

func sendRecord(addr string, rec decoder.CSVRecord) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	msg := codec.Message{
		Timestamp:      rec.Timestamp,
		LogicalEventID: rec.EventID,
		Contributor:    fragment.Contributor(rec.Contributor),
		Payload:        rec.Payload,
	}
	return codec.EncodeMessage(conn, msg)
}
