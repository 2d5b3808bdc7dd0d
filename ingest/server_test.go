package ingest

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/c360/eventbuilder/buffer"
	"github.com/c360/eventbuilder/codec"
	"github.com/c360/eventbuilder/fragment"
	"github.com/c360/eventbuilder/metric"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestServer_AcceptsAndEnqueuesOneFragmentPerConnection(t *testing.T) {
	addr := freeAddr(t)
	buf := buffer.New()
	srv := New(Config{Addr: addr}, buf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, srv.Start(ctx))
	defer srv.Stop(2 * time.Second)

	for i := 0; i < 3; i++ {
		conn, err := net.Dial("tcp", addr)
		require.NoError(t, err)
		msg := codec.Message{
			Timestamp:      int64(1_000_000 + i*100),
			LogicalEventID: 1,
			Contributor:    fragment.Contributor(i),
			Payload:        []byte{0xAA, 0xBB},
		}
		require.NoError(t, codec.EncodeMessage(conn, msg))
		require.NoError(t, conn.Close())
	}

	require.Eventually(t, func() bool {
		return buf.Stats().FragmentsAdded == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_DropsCorruptFragmentWithoutEnqueueing(t *testing.T) {
	addr := freeAddr(t)
	buf := buffer.New()
	srv := New(Config{Addr: addr}, buf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, srv.Start(ctx))
	defer srv.Stop(2 * time.Second)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)

	msg := codec.Message{Timestamp: 1, Contributor: fragment.Tracker, Payload: []byte{1, 2, 3}}
	var encoded bytes.Buffer
	require.NoError(t, codec.EncodeMessage(&encoded, msg))

	raw := encoded.Bytes()
	raw[len(raw)-1] ^= 0xFF // flip a trailer byte so the CRC no longer matches

	_, err = conn.Write(raw)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	time.Sleep(100 * time.Millisecond)
	require.Equal(t, int64(0), buf.Stats().FragmentsAdded)
}

func TestServer_StopIsIdempotentAndUnregistersMetrics(t *testing.T) {
	addr := freeAddr(t)
	buf := buffer.New()
	registry := metric.NewMetricsRegistry()
	srv := New(Config{Addr: addr}, buf, WithMetrics(registry, "test-ingest"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, srv.Start(ctx))
	require.NoError(t, srv.Stop(2*time.Second))
	require.NoError(t, srv.Stop(2*time.Second))

	srv2 := New(Config{Addr: addr}, buf, WithMetrics(registry, "test-ingest"))
	require.NoError(t, srv2.Start(ctx))
	require.NoError(t, srv2.Stop(2*time.Second))
}

func TestServer_HealthReflectsRunningState(t *testing.T) {
	addr := freeAddr(t)
	buf := buffer.New()
	srv := New(Config{Addr: addr}, buf)

	require.False(t, srv.Health().Healthy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, srv.Start(ctx))
	require.True(t, srv.Health().Healthy)

	require.NoError(t, srv.Stop(2*time.Second))
	require.False(t, srv.Health().Healthy)
}
