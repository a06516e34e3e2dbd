package stream

import (
	"errors"
	"sync"

	"github.com/bnb-chain/block-feed/config"
	"github.com/bnb-chain/block-feed/metrics"
)

var ErrNoFetcherConfigs = errors.New("at least one fetcher config is required")

// Fetcher produces the block stream of one chain. Spawn must not block; all I/O runs on the fetcher's own goroutine.
type Fetcher interface {
	Spawn(cfg config.FetcherConfig) *Stream
}

// FanIn merges one stream per config into a single stream. A single config gets the fetcher's own stream back.
// Blocks of one chain keep their order; blocks of different chains interleave arbitrarily.
func FanIn(fetcher Fetcher, configs []config.FetcherConfig) (*Stream, error) {
	switch len(configs) {
	case 0:
		return nil, ErrNoFetcherConfigs
	case 1:
		return fetcher.Spawn(configs[0]), nil
	}

	sources := make([]*Stream, 0, len(configs))
	for _, cfg := range configs {
		sources = append(sources, fetcher.Spawn(cfg))
	}
	return Merge(sources...), nil
}

// Merge forwards every source into one new stream, one goroutine per source. The merged stream closes after all
// sources closed; closing it closes every source.
func Merge(sources ...*Stream) *Stream {
	out, sender := New(DefaultCapacity)
	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src *Stream) {
			defer wg.Done()
			forward(src, sender)
		}(src)
	}
	go func() {
		wg.Wait()
		sender.Close()
	}()
	return out
}

func forward(src *Stream, dst *Sender) {
	defer src.Close()
	for {
		select {
		case p, ok := <-src.ch:
			if !ok {
				return
			}
			if !dst.Send(p) {
				return
			}
			metrics.ForwardedPayloadsCounter.Inc()
		case <-dst.Context().Done():
			return
		}
	}
}
