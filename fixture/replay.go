package fixture

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/bnb-chain/block-feed/logging"
	"github.com/bnb-chain/block-feed/metrics"
	"github.com/bnb-chain/block-feed/stream"
	"github.com/bnb-chain/block-feed/types"
)

const ReplayInterval = 50 * time.Millisecond

type ReplayOption func(*replayer)

type replayer struct {
	interval time.Duration
}

func WithInterval(d time.Duration) ReplayOption {
	return func(r *replayer) {
		if d >= 0 {
			r.interval = d
		}
	}
}

// Load reads a fixture file written by Recorder.Flush.
func Load(path string) ([]*types.BlockPayload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var payloads []*types.BlockPayload
	if err := json.Unmarshal(data, &payloads); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if payloads == nil {
		return nil, fmt.Errorf("parse fixture %s: expected a JSON array of blocks", path)
	}
	for i, p := range payloads {
		if p == nil {
			return nil, fmt.Errorf("parse fixture %s: entry %d is null", path, i)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("parse fixture %s: entry %d: %w", path, i, err)
		}
	}
	return payloads, nil
}

// Replay emits the payloads of a fixture file in file order, pausing between consecutive payloads. The stream
// closes after the last one. A file that cannot be read or parsed is reported before anything is emitted.
func Replay(path string, opts ...ReplayOption) (*stream.Stream, error) {
	r := &replayer{interval: ReplayInterval}
	for _, opt := range opts {
		opt(r)
	}

	payloads, err := Load(path)
	if err != nil {
		return nil, err
	}
	logging.Logger.Infof("replaying %d payloads from %s", len(payloads), path)

	out, sender := stream.New(stream.DefaultCapacity)
	go func() {
		defer sender.Close()
		ctx := sender.Context()
		for i, p := range payloads {
			if i > 0 && r.interval > 0 {
				timer := time.NewTimer(r.interval)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			if !sender.Send(p) {
				return
			}
			metrics.ReplayedPayloadsCounter.Inc()
		}
	}()
	return out, nil
}
