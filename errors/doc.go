// Package errors implements a three-class error classification system for
// the event builder pipeline: Transient (temporary, retryable), Invalid (bad
// or corrupt input, non-retryable), and Fatal (unrecoverable, stop
// processing).
//
// Components use Wrap/WrapTransient/WrapInvalid/WrapFatal to attach this
// classification at the point an error is produced, and IsTransient/
// IsInvalid/IsFatal to query it at the point an error is handled — so a
// checksum mismatch in the ingest server and a buffer underrun in the
// payload reader are handled the same way without string matching.
package errors
