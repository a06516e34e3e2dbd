// Package fixture records block streams to a JSON file and replays them, so consumers can run without a node.
package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnb-chain/block-feed/logging"
	"github.com/bnb-chain/block-feed/metrics"
	"github.com/bnb-chain/block-feed/stream"
	"github.com/bnb-chain/block-feed/types"
)

// Recorder buffers every payload it sees and writes them out as one JSON array on Flush.
type Recorder struct {
	path string

	mu       sync.Mutex
	payloads []*types.BlockPayload
}

func NewRecorder(path string) *Recorder {
	return &Recorder{
		path:     path,
		payloads: make([]*types.BlockPayload, 0),
	}
}

func (r *Recorder) Record(p *types.BlockPayload) {
	if p == nil {
		return
	}
	r.mu.Lock()
	r.payloads = append(r.payloads, p)
	n := len(r.payloads)
	r.mu.Unlock()
	metrics.RecordedPayloadsGauge.Set(float64(n))
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

// Tap records every payload of src on its way to the returned stream. Closing the returned stream closes src.
func (r *Recorder) Tap(src *stream.Stream) *stream.Stream {
	out, sender := stream.New(stream.DefaultCapacity)
	go func() {
		defer sender.Close()
		defer src.Close()
		ctx := sender.Context()
		for {
			p, err := src.Recv(ctx)
			if err != nil {
				return
			}
			r.Record(p)
			if !sender.Send(p) {
				return
			}
		}
	}()
	return out
}

// Flush writes everything recorded so far, creating parent directories as needed. The buffer is kept, so a
// later Flush rewrites the file with a superset.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	data, err := json.MarshalIndent(r.payloads, "", "  ")
	n := len(r.payloads)
	r.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode fixture: %w", err)
	}

	if dir := filepath.Dir(r.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create fixture dir %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("write fixture %s: %w", r.path, err)
	}
	logging.Logger.Infof("recorded %d payloads to %s", n, r.path)
	return nil
}
