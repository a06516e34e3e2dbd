package metrics

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bnb-chain/block-feed/logging"
)

const (
	FetchErrorHead     = "head"
	FetchErrorBlock    = "block"
	FetchErrorNotFound = "not_found"
	FetchErrorReceipts = "receipts"
)

var (
	EmittedBlockGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "feed_emitted_block_number",
		Help: "Number of the latest block emitted by the chain fetcher.",
	}, []string{"chain"})

	L1OriginGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "feed_l1_origin_block_number",
		Help: "L1 origin block number derived from the latest emitted OP Stack block.",
	}, []string{"chain"})

	EmittedBlocksCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_emitted_blocks_total",
		Help: "Blocks emitted by the chain fetcher.",
	}, []string{"chain"})

	EmittedTxsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_emitted_transactions_total",
		Help: "Transactions carried by emitted blocks.",
	}, []string{"chain"})

	FetchErrorsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_fetch_errors_total",
		Help: "RPC failures seen by the chain fetcher, by kind.",
	}, []string{"chain", "kind"})

	DuplicateBlocksCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "feed_duplicate_blocks_total",
		Help: "Blocks dropped because their hash was already emitted.",
	}, []string{"chain"})

	ForwardedPayloadsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_fanin_forwarded_total",
		Help: "Payloads forwarded into the merged multi-chain stream.",
	})

	RecordedPayloadsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "feed_recorded_payloads",
		Help: "Payloads buffered by the fixture recorder.",
	})

	ReplayedPayloadsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "feed_replayed_payloads_total",
		Help: "Payloads emitted from a replayed fixture.",
	})

	MetricsItems = []prometheus.Collector{
		EmittedBlockGauge,
		L1OriginGauge,
		EmittedBlocksCounter,
		EmittedTxsCounter,
		FetchErrorsCounter,
		DuplicateBlocksCounter,
		ForwardedPayloadsCounter,
		RecordedPayloadsGauge,
		ReplayedPayloadsCounter,
	}
)

type Metrics struct {
	httpAddress string
	registry    *prometheus.Registry
	httpServer  *http.Server
}

func NewMetrics(address string) *Metrics {
	return &Metrics{
		httpAddress: address,
		registry:    prometheus.NewRegistry(),
	}
}

func (m *Metrics) Start() {
	m.registry.MustRegister(MetricsItems...)
	go m.serve()
}

// Handler exposes the registry, mainly for tests.
func (m *Metrics) Handler() http.Handler {
	router := mux.NewRouter()
	router.Path("/metrics").Handler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return router
}

func (m *Metrics) serve() {
	m.httpServer = &http.Server{
		Addr:    m.httpAddress,
		Handler: m.Handler(),
	}
	if err := m.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Logger.Errorf("failed to listen and serve, err=%s", err.Error())
		panic(err)
	}
}
