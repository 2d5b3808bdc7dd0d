package builder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/c360/eventbuilder/buffer"
	"github.com/c360/eventbuilder/codec"
	"github.com/c360/eventbuilder/fragment"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu     sync.Mutex
	events []fragment.CombinedEvent
}

func (s *recordingSink) Handle(event fragment.CombinedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func payload(ts int64) []byte {
	return codec.EncodePayload(fragment.SubsystemPayload{Timestamp: ts})
}

func frag(ts int64, c fragment.Contributor) fragment.Fragment {
	return fragment.Fragment{Timestamp: ts, Contributor: c, Payload: payload(ts)}
}

func TestBuilder_AssemblesCompleteEventWithoutWaitingForTimeout(t *testing.T) {
	buf := buffer.New()
	sink := &recordingSink{}

	now := time.Now().UnixNano()
	buf.Add(frag(now, fragment.Tracker))
	buf.Add(frag(now+100, fragment.HCal))
	buf.Add(frag(now+200, fragment.ECal))

	b := New(Config{
		CoherenceWindow: 10 * time.Millisecond,
		LatencyDelay:    time.Millisecond,
		PollInterval:    5 * time.Millisecond,
	}, buf, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, b.Start(ctx))
	defer b.Stop(time.Second)

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
	require.True(t, sink.events[0].IsComplete())
}

func TestBuilder_ForcedDrainEmitsPartialEventAfterLatencyDelay(t *testing.T) {
	buf := buffer.New()
	sink := &recordingSink{}

	stale := time.Now().Add(-time.Hour).UnixNano()
	buf.Add(frag(stale, fragment.Tracker))

	b := New(Config{
		CoherenceWindow: time.Millisecond,
		LatencyDelay:    time.Millisecond,
		PollInterval:    5 * time.Millisecond,
	}, buf, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, b.Start(ctx))
	defer b.Stop(time.Second)

	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 5*time.Millisecond)
	require.False(t, sink.events[0].IsComplete())
	require.True(t, sink.events[0].HasContributor(fragment.Tracker))
}

func TestBuilder_HealthReflectsRunningState(t *testing.T) {
	buf := buffer.New()
	sink := &recordingSink{}
	b := New(Config{PollInterval: 5 * time.Millisecond}, buf, sink)

	require.False(t, b.Health().Healthy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, b.Start(ctx))
	require.True(t, b.Health().Healthy)

	require.NoError(t, b.Stop(time.Second))
	require.False(t, b.Health().Healthy)
}

func TestBuilder_StopIsIdempotent(t *testing.T) {
	buf := buffer.New()
	sink := &recordingSink{}
	b := New(Config{PollInterval: 5 * time.Millisecond}, buf, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, b.Start(ctx))
	require.NoError(t, b.Stop(time.Second))
	require.NoError(t, b.Stop(time.Second))
}
