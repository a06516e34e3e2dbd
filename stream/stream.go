package stream

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bnb-chain/block-feed/types"
)

const DefaultCapacity = 64

var (
	ErrStreamEmpty  = errors.New("stream is empty")
	ErrStreamClosed = errors.New("stream is closed")
	ErrRecvTimeout  = errors.New("timed out waiting for payload")
)

// Stream is the receiving end of a bounded payload channel. It has a single consumer.
//
// Closing a Stream is how a consumer walks away: every producer feeding it sees its next
// Send fail and exits, and any in-flight RPC call of that producer is cancelled.
type Stream struct {
	ch     chan *types.BlockPayload
	ctx    context.Context
	cancel context.CancelFunc
}

// Sender is the producing end of a Stream.
type Sender struct {
	ch        chan *types.BlockPayload
	ctx       context.Context
	closeOnce sync.Once
}

// New creates a stream with the given buffer capacity.
func New(capacity int) (*Stream, *Sender) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	ch := make(chan *types.BlockPayload, capacity)
	ctx, cancel := context.WithCancel(context.Background())
	return &Stream{ch: ch, ctx: ctx, cancel: cancel}, &Sender{ch: ch, ctx: ctx}
}

// TryRecv returns the next payload without blocking. It returns ErrStreamEmpty when nothing is buffered
// and ErrStreamClosed once the producer finished and the buffer is drained.
func (s *Stream) TryRecv() (*types.BlockPayload, error) {
	select {
	case p, ok := <-s.ch:
		if !ok {
			return nil, ErrStreamClosed
		}
		return p, nil
	default:
		return nil, ErrStreamEmpty
	}
}

// RecvTimeout blocks for at most timeout waiting for the next payload. A buffered payload is returned even
// when timeout is not positive.
func (s *Stream) RecvTimeout(timeout time.Duration) (*types.BlockPayload, error) {
	if p, err := s.TryRecv(); err != ErrStreamEmpty {
		return p, err
	}
	if timeout <= 0 {
		return nil, ErrRecvTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case p, ok := <-s.ch:
		if !ok {
			return nil, ErrStreamClosed
		}
		return p, nil
	case <-timer.C:
		return nil, ErrRecvTimeout
	}
}

// Recv blocks until a payload arrives, the producer finishes or ctx is done.
func (s *Stream) Recv(ctx context.Context) (*types.BlockPayload, error) {
	select {
	case p, ok := <-s.ch:
		if !ok {
			return nil, ErrStreamClosed
		}
		return p, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len is the number of buffered payloads.
func (s *Stream) Len() int {
	return len(s.ch)
}

// Close detaches the consumer. It is safe to call more than once.
func (s *Stream) Close() {
	s.cancel()
}

// Closed is done once the consumer called Close.
func (s *Stream) Closed() <-chan struct{} {
	return s.ctx.Done()
}

// Send blocks until p is buffered or the consumer closed the stream. It reports whether p was accepted.
func (s *Sender) Send(p *types.BlockPayload) bool {
	// a closed consumer wins over free buffer space
	if s.ctx.Err() != nil {
		return false
	}
	select {
	case s.ch <- p:
		return true
	case <-s.ctx.Done():
		return false
	}
}

// Context is cancelled once the consumer closes the stream. Producers hang their RPC calls and sleeps on it.
func (s *Sender) Context() context.Context {
	return s.ctx
}

// Close marks the end of production. Buffered payloads stay readable.
func (s *Sender) Close() {
	s.closeOnce.Do(func() {
		close(s.ch)
	})
}
