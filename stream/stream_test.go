package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bnb-chain/block-feed/types"
)

func TestTryRecvEmptyThenPayloadThenClosed(t *testing.T) {
	s, sender := New(2)

	_, err := s.TryRecv()
	require.ErrorIs(t, err, ErrStreamEmpty)

	require.True(t, sender.Send(&types.BlockPayload{Number: 7}))
	p, err := s.TryRecv()
	require.NoError(t, err)
	require.Equal(t, uint64(7), p.Number)

	sender.Close()
	_, err = s.TryRecv()
	require.ErrorIs(t, err, ErrStreamClosed)
}

func TestBufferedPayloadsSurviveSenderClose(t *testing.T) {
	s, sender := New(4)
	for i := uint64(0); i < 3; i++ {
		require.True(t, sender.Send(&types.BlockPayload{Number: i}))
	}
	sender.Close()
	sender.Close()

	for i := uint64(0); i < 3; i++ {
		p, err := s.RecvTimeout(time.Second)
		require.NoError(t, err)
		require.Equal(t, i, p.Number)
	}
	_, err := s.RecvTimeout(time.Second)
	require.ErrorIs(t, err, ErrStreamClosed)
}

func TestRecvTimeout(t *testing.T) {
	s, _ := New(1)
	start := time.Now()
	_, err := s.RecvTimeout(30 * time.Millisecond)
	require.ErrorIs(t, err, ErrRecvTimeout)
	require.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestRecvTimeoutReturnsBufferedPayloadWithoutWaiting(t *testing.T) {
	s, sender := New(2)
	require.True(t, sender.Send(&types.BlockPayload{Number: 1}))
	require.True(t, sender.Send(&types.BlockPayload{Number: 2}))

	for _, timeout := range []time.Duration{0, -time.Second} {
		p, err := s.RecvTimeout(timeout)
		require.NoError(t, err)
		require.NotNil(t, p)
	}
	_, err := s.RecvTimeout(0)
	require.ErrorIs(t, err, ErrRecvTimeout)

	sender.Close()
	_, err = s.RecvTimeout(0)
	require.ErrorIs(t, err, ErrStreamClosed)
}

func TestRecvHonoursContext(t *testing.T) {
	s, _ := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Recv(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSendUnblocksWhenConsumerCloses(t *testing.T) {
	s, sender := New(1)
	require.True(t, sender.Send(&types.BlockPayload{Number: 0}))

	result := make(chan bool, 1)
	go func() {
		result <- sender.Send(&types.BlockPayload{Number: 1})
	}()

	select {
	case <-result:
		t.Fatal("send should block while the buffer is full")
	case <-time.After(50 * time.Millisecond):
	}

	s.Close()
	select {
	case ok := <-result:
		require.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send did not observe the closed consumer")
	}
	require.Error(t, sender.Context().Err())
	require.False(t, sender.Send(&types.BlockPayload{Number: 2}))
}

func TestNewDefaultsCapacity(t *testing.T) {
	s, _ := New(0)
	require.Equal(t, DefaultCapacity, cap(s.ch))
}
