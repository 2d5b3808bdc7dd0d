// Package codec implements the two wire formats shared by the ingest
// pipeline: the framed fragment message (header + payload + CRC-32
// trailer, little-endian) read off a TCP connection by the ingest server,
// and the length-prefixed SubsystemPayload format carried inside a
// fragment's payload bytes.
//
// Both formats are explicit-endian on the wire; nothing here depends on
// the host's native byte order.
package codec
