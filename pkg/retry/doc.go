// Package retry provides exponential backoff for the ingest listener's
// startup bind, which can fail transiently if the configured TCP port is
// still held by a socket draining from a previous run.
//
// Do treats any error classified as fatal by the errors package as
// non-retryable and returns it immediately; everything else backs off with
// jitter up to MaxAttempts, or until the caller's context is cancelled.
//
//	err := retry.Do(ctx, retry.DefaultConfig(), func() error {
//		l, err := net.Listen("tcp", addr)
//		...
//		return err
//	})
package retry
