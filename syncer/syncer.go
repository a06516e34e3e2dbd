package syncer

import (
	"context"
	"errors"
	"time"

	"github.com/bnb-chain/block-feed/cache"
	"github.com/bnb-chain/block-feed/config"
	"github.com/bnb-chain/block-feed/external"
	"github.com/bnb-chain/block-feed/logging"
	"github.com/bnb-chain/block-feed/metrics"
	"github.com/bnb-chain/block-feed/stream"
)

const (
	BackfillCount = 20
	PollInterval  = 2 * time.Second

	SeenBlockCacheSize = 1024
)

type DialFunc func(ctx context.Context, endpoint string) (external.IClient, error)

type Option func(*EVMFetcher)

func WithPollInterval(d time.Duration) Option {
	return func(f *EVMFetcher) {
		if d > 0 {
			f.pollInterval = d
		}
	}
}

func WithBackfillCount(n uint64) Option {
	return func(f *EVMFetcher) {
		if n > 0 {
			f.backfillCount = n
		}
	}
}

func WithDialer(dial DialFunc) Option {
	return func(f *EVMFetcher) {
		if dial != nil {
			f.dial = dial
		}
	}
}

// EVMFetcher spawns one ChainSyncer goroutine per chain. OP Stack handling is switched on by the chain identity.
type EVMFetcher struct {
	pollInterval  time.Duration
	backfillCount uint64
	dial          DialFunc
}

var _ stream.Fetcher = (*EVMFetcher)(nil)

func NewEVMFetcher(opts ...Option) *EVMFetcher {
	f := &EVMFetcher{
		pollInterval:  PollInterval,
		backfillCount: BackfillCount,
		dial:          external.NewClient,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// Spawn starts fetching cfg's chain in the background and returns its stream. The goroutine exits when the
// consumer closes the stream, or right away when the initial head query fails.
func (f *EVMFetcher) Spawn(cfg config.FetcherConfig) *stream.Stream {
	out, sender := stream.New(stream.DefaultCapacity)
	go func() {
		defer sender.Close()
		client, err := f.dial(sender.Context(), cfg.RPCURL.String())
		if err != nil {
			logging.Logger.Errorf("[%s] failed to dial rpc, err=%s", cfg.Chain, err.Error())
			return
		}
		defer client.Close()
		s, err := NewChainSyncer(client, cfg, f.pollInterval, f.backfillCount)
		if err != nil {
			logging.Logger.Errorf("[%s] failed to create syncer, err=%s", cfg.Chain, err.Error())
			return
		}
		s.StartLoop(sender)
	}()
	return out
}

// ChainSyncer runs the backfill-then-poll loop of a single chain.
type ChainSyncer struct {
	client        external.IClient
	config        config.FetcherConfig
	seen          cache.SeenSet
	pollInterval  time.Duration
	backfillCount uint64
	label         string
}

func NewChainSyncer(client external.IClient, cfg config.FetcherConfig, pollInterval time.Duration, backfillCount uint64) (*ChainSyncer, error) {
	seen, err := cache.NewLocalCache(SeenBlockCacheSize)
	if err != nil {
		return nil, err
	}
	if backfillCount == 0 {
		backfillCount = 1
	}
	return &ChainSyncer{
		client:        client,
		config:        cfg,
		seen:          seen,
		pollInterval:  pollInterval,
		backfillCount: backfillCount,
		label:         cfg.Chain.String(),
	}, nil
}

// StartLoop blocks until the consumer closes the stream or the initial head query fails.
func (s *ChainSyncer) StartLoop(sender *stream.Sender) {
	ctx := sender.Context()

	latest, err := s.client.BlockNumber(ctx)
	if err != nil {
		if ctx.Err() == nil {
			metrics.FetchErrorsCounter.WithLabelValues(s.label, metrics.FetchErrorHead).Inc()
			logging.Logger.Errorf("[%s] failed to get latest block number, err=%s", s.label, err.Error())
		}
		return
	}

	start := BackfillStart(latest, s.backfillCount)
	logging.Logger.Infof("[%s] backfilling blocks %d..=%d", s.label, start, latest)
	if !s.fetchRange(ctx, start, latest, sender) {
		return
	}
	logging.Logger.Infof("[%s] backfill complete, polling for new blocks", s.label)

	lastSeen := latest
	for {
		if !sleep(ctx, s.pollInterval) {
			return
		}
		tip, err := s.client.BlockNumber(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			metrics.FetchErrorsCounter.WithLabelValues(s.label, metrics.FetchErrorHead).Inc()
			logging.Logger.Errorf("[%s] poll error, err=%s", s.label, err.Error())
			continue
		}
		// a lower or equal tip emits nothing; reorgs are not handled
		if tip <= lastSeen {
			continue
		}
		if !s.fetchRange(ctx, lastSeen+1, tip, sender) {
			return
		}
		lastSeen = tip
	}
}

// BackfillStart is the first block of the initial catch-up window ending at latest.
func BackfillStart(latest, count uint64) uint64 {
	if count == 0 || latest < count-1 {
		return 0
	}
	return latest - (count - 1)
}

func (s *ChainSyncer) fetchRange(ctx context.Context, from, to uint64, sender *stream.Sender) bool {
	for n := from; n <= to; n++ {
		if !s.fetchAndSend(ctx, n, sender) {
			return false
		}
		if n == to {
			break
		}
	}
	return true
}

// fetchAndSend reports false only when the consumer is gone. RPC failures skip the block.
func (s *ChainSyncer) fetchAndSend(ctx context.Context, number uint64, sender *stream.Sender) bool {
	block, err := s.client.GetBlockByNumber(ctx, number)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		if errors.Is(err, external.ErrBlockNotFound) {
			metrics.FetchErrorsCounter.WithLabelValues(s.label, metrics.FetchErrorNotFound).Inc()
			logging.Logger.Warningf("[%s] block %d not found", s.label, number)
			return true
		}
		metrics.FetchErrorsCounter.WithLabelValues(s.label, metrics.FetchErrorBlock).Inc()
		logging.Logger.Errorf("[%s] failed to fetch block %d, err=%s", s.label, number, err.Error())
		return true
	}

	if s.seen.Seen(block.Hash.Hex()) {
		metrics.DuplicateBlocksCounter.WithLabelValues(s.label).Inc()
		logging.Logger.Warningf("[%s] block %d (%s) was already emitted, skipping", s.label, number, block.Hash.Hex())
		return true
	}

	payload := ToBlockPayload(s.config.Chain, block)
	if s.config.FetchOpStackFees && s.config.Chain.IsOpStack() {
		receipts, err := s.client.GetBlockReceipts(ctx, number)
		if err != nil {
			if ctx.Err() != nil {
				return false
			}
			metrics.FetchErrorsCounter.WithLabelValues(s.label, metrics.FetchErrorReceipts).Inc()
			logging.Logger.Warningf("[%s] failed to get receipts of block %d, op stack fees left unset, err=%s", s.label, number, err.Error())
		} else {
			attachOpStackFees(payload, receipts)
		}
	}

	if payload.L1OriginNumber != nil {
		logging.Logger.Debugf("[%s] block %d (%d txs, gas %d/%d, l1 origin %d)", s.label, payload.Number, payload.TxCount, payload.GasUsed, payload.GasLimit, *payload.L1OriginNumber)
	} else {
		logging.Logger.Debugf("[%s] block %d (%d txs, gas %d/%d)", s.label, payload.Number, payload.TxCount, payload.GasUsed, payload.GasLimit)
	}

	if !sender.Send(payload) {
		return false
	}
	metrics.EmittedBlockGauge.WithLabelValues(s.label).Set(float64(payload.Number))
	metrics.EmittedBlocksCounter.WithLabelValues(s.label).Inc()
	metrics.EmittedTxsCounter.WithLabelValues(s.label).Add(float64(payload.TxCount))
	if payload.L1OriginNumber != nil {
		metrics.L1OriginGauge.WithLabelValues(s.label).Set(float64(*payload.L1OriginNumber))
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
