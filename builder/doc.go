// Package builder drives the periodic drain of the fragment buffer: on
// each tick it gives expired fragments priority for a forced, possibly
// partial assembly, and otherwise attempts a complete, non-forced
// assembly. Assembled events are handed to a Sink.
package builder
