// Package ingest implements the TCP-facing fragment intake: a listener that
// accepts one connection per fragment, reads and CRC-validates the wire
// message, and enqueues the resulting fragment into the shared
// time-indexed buffer.
//
// Its lifecycle shape (atomic running flag, shutdown/done channels,
// bounded accept wait so shutdown is observed promptly) follows the
// teacher's UDP input component, adapted from UDP receive-loop polling to
// TCP accept-with-deadline.
package ingest
