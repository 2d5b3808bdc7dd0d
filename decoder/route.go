package decoder

// Packet is the routed form of a decoded frame, forwarded to the builder
// for contributors the pipeline understands. Contributor stays in the raw
// namespace (20 or 30); callers bridging into the fragment buffer must
// translate explicitly.
type Packet struct {
	PulseID     uint64
	EventID     uint32
	Contributor int
	RawSystemID uint32
	Payload     []byte
}

// DecodeAndRoute runs the shared sync/validate loop over buf and sends one
// Packet per frame whose contributor tag is RawHCal or RawECal. Other
// frames are consumed and discarded. DecodeAndRoute does not close out.
func DecodeAndRoute(buf []byte, out chan<- Packet, opts ...Option) {
	decode(buf, func(f Frame) {
		if _, ok := RouteContributor(f.Contributor); !ok {
			return
		}
		out <- Packet{
			PulseID:     f.PulseID,
			EventID:     f.EventID,
			Contributor: f.Contributor,
			RawSystemID: f.RawSystemID,
			Payload:     f.Payload,
		}
	}, opts...)
}
