// Package decoder syncs to and parses big-endian, size-prefixed frames from
// a raw detector capture. It shares one sync/frame loop between two terminal
// sinks: DecodeAndSave, which writes a flat CSV of ADC samples, and
// DecodeAndRoute, which forwards Packet values for contributors the
// downstream pipeline understands.
//
// The raw-capture contributor tags (20, 30) are a distinct namespace from
// the buffer/codec tags (fragment.Tracker/HCal/ECal) and are never used
// interchangeably; RouteContributor translates explicitly between them.
package decoder
