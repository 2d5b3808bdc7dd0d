// Package assemble merges a drained set of fragments — all within one
// coherence window — into a single combined event record, decoding each
// fragment's payload and concatenating same-contributor frames in drain
// order.
package assemble
