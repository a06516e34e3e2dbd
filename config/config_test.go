package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bnb-chain/block-feed/types"
)

func TestParseRPCURL(t *testing.T) {
	for _, raw := range []string{"http://127.0.0.1:8545", "https://mainnet.base.org", "ws://localhost:8546", " wss://node.example/ws "} {
		u, err := ParseRPCURL(raw)
		require.NoError(t, err, raw)
		require.NotEmpty(t, u.Host)
	}
	for _, raw := range []string{"", "not a url", "ftp://host", "http://", "127.0.0.1:8545"} {
		_, err := ParseRPCURL(raw)
		require.ErrorIs(t, err, ErrInvalidRPCURL, raw)
	}
}

func TestDefaultConfigFromEnvDefaults(t *testing.T) {
	t.Setenv(EnvVarRPCURL, "")
	t.Setenv(EnvVarChainID, "")

	cfg, err := DefaultConfigFromEnv()
	require.NoError(t, err)
	require.Len(t, cfg.Chains, 1)
	require.Equal(t, DefaultRPCURL, cfg.Chains[0].RPCAddr)
	require.Equal(t, uint64(1), cfg.Chains[0].ChainID)
	require.True(t, cfg.LogConfig.UseConsoleLogger)

	fcs, err := cfg.FetcherConfigs()
	require.NoError(t, err)
	require.True(t, fcs[0].Chain.Equal(types.Mainnet))
	require.Equal(t, "127.0.0.1:8545", fcs[0].RPCURL.Host)
}

func TestDefaultConfigFromEnvMultiChain(t *testing.T) {
	t.Setenv(EnvVarRPCURL, "http://a:8545,http://b:8545")
	t.Setenv(EnvVarChainID, "1,8453")

	cfg, err := DefaultConfigFromEnv()
	require.NoError(t, err)
	fcs, err := cfg.FetcherConfigs()
	require.NoError(t, err)
	require.Len(t, fcs, 2)
	require.True(t, fcs[1].Chain.IsOpStack())

	t.Setenv(EnvVarChainID, "1")
	_, err = DefaultConfigFromEnv()
	require.Error(t, err)

	t.Setenv(EnvVarChainID, "one,two")
	_, err = DefaultConfigFromEnv()
	require.Error(t, err)
}

func TestFetcherConfigsRejectsDuplicatesAndBadURLs(t *testing.T) {
	cfg := &Config{Chains: []ChainConfig{
		{ChainID: 10, RPCAddr: "http://a"},
		{ChainID: 10, RPCAddr: "http://b"},
	}}
	_, err := cfg.FetcherConfigs()
	require.Error(t, err)

	cfg.Chains[1] = ChainConfig{ChainID: 8453, RPCAddr: "bogus"}
	_, err = cfg.FetcherConfigs()
	require.ErrorIs(t, err, ErrInvalidRPCURL)
}

func TestToFetcherConfigOpStackFees(t *testing.T) {
	l1 := ChainConfig{ChainID: 1, RPCAddr: "http://a", FetchOpStackFees: true}
	fc, err := l1.ToFetcherConfig()
	require.NoError(t, err)
	require.False(t, fc.FetchOpStackFees)

	custom := ChainConfig{ChainID: 90001, Name: "devnet", OpStack: true, RPCAddr: "http://a", FetchOpStackFees: true}
	fc, err = custom.ToFetcherConfig()
	require.NoError(t, err)
	require.True(t, fc.FetchOpStackFees)
	require.Equal(t, "devnet", fc.Chain.Name())
}

func TestToFetcherConfigResolvesChainByName(t *testing.T) {
	cfg := ChainConfig{Name: "base", RPCAddr: "https://mainnet.base.org"}
	fc, err := cfg.ToFetcherConfig()
	require.NoError(t, err)
	require.True(t, fc.Chain.Equal(types.Base))
	require.True(t, fc.Chain.IsOpStack())

	cfg.Name = "no-such-chain"
	_, err = cfg.ToFetcherConfig()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	require.Panics(t, func() { (&Config{}).Validate() })
	require.Panics(t, func() {
		(&Config{FixtureConfig: FixtureConfig{RecordPath: "a", ReplayPath: "b"}}).Validate()
	})
	require.Panics(t, func() {
		(&Config{LogConfig: LogConfig{UseFileLogger: true}}).Validate()
	})
	require.NotPanics(t, func() {
		(&Config{FixtureConfig: FixtureConfig{ReplayPath: "fixture.json"}}).Validate()
	})
	require.NotPanics(t, func() {
		(&Config{Chains: []ChainConfig{{ChainID: 1, RPCAddr: DefaultRPCURL}}}).Validate()
	})
}

func TestParseConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "log_config": {"level": "DEBUG", "use_console_logger": true},
  "chains": [
    {"chain_id": 8453, "rpc_addr": "https://mainnet.base.org", "fetch_op_stack_fees": true},
    {"chain_id": 1, "rpc_addr": "wss://eth.example/ws"}
  ],
  "fixture_config": {"record_path": "out/fixture.json"},
  "metrics_config": {"enable": true, "address": "127.0.0.1:9191"}
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg := ParseConfigFromFile(path)
	require.Equal(t, "DEBUG", cfg.LogConfig.Level)
	require.Len(t, cfg.Chains, 2)
	require.Equal(t, "out/fixture.json", cfg.FixtureConfig.RecordPath)
	require.True(t, cfg.MetricsConfig.Enable)
	require.NotPanics(t, cfg.Validate)

	require.Equal(t, cfg.Chains, ParseConfigFromJson(content).Chains)
	require.Panics(t, func() { ParseConfigFromJson("{") })
}
