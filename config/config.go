package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/bnb-chain/block-feed/types"
	"github.com/bnb-chain/block-feed/util"
)

var ErrInvalidRPCURL = errors.New("invalid rpc url")

type Config struct {
	LogConfig     LogConfig     `json:"log_config"`
	Chains        []ChainConfig `json:"chains"`
	FixtureConfig FixtureConfig `json:"fixture_config"`
	MetricsConfig MetricsConfig `json:"metrics_config"`
}

type ChainConfig struct {
	ChainID          uint64 `json:"chain_id"`            // ChainID is the EIP-155 chain id, or 0 to look Name up in the registry
	Name             string `json:"name"`                // Name overrides the well-known chain name, optional
	RPCAddr          string `json:"rpc_addr"`            // RPCAddr is the JSON-RPC endpoint of the chain
	OpStack          bool   `json:"op_stack"`            // OpStack marks an OP Stack L2 the registry does not know about
	FetchOpStackFees bool   `json:"fetch_op_stack_fees"` // FetchOpStackFees reads block receipts to fill the L1 fee breakdown
}

// FetcherConfig is the resolved, validated input of one chain fetcher.
type FetcherConfig struct {
	Chain            types.ChainIdentity
	RPCURL           *url.URL
	FetchOpStackFees bool
}

func (cfg *ChainConfig) ToFetcherConfig() (FetcherConfig, error) {
	u, err := ParseRPCURL(cfg.RPCAddr)
	if err != nil {
		return FetcherConfig{}, err
	}
	id := cfg.ChainID
	if id == 0 {
		known, err := types.ChainByName(cfg.Name)
		if err != nil {
			return FetcherConfig{}, err
		}
		id = known.ID()
	}
	chain := types.NewChainIdentity(id, cfg.Name, cfg.OpStack)
	return FetcherConfig{
		Chain:            chain,
		RPCURL:           u,
		FetchOpStackFees: cfg.FetchOpStackFees && chain.IsOpStack(),
	}, nil
}

// ParseRPCURL accepts absolute http, https, ws and wss URLs with a host.
func ParseRPCURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidRPCURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRPCURL, err.Error())
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q in %s", ErrInvalidRPCURL, u.Scheme, raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %s", ErrInvalidRPCURL, raw)
	}
	return u, nil
}

// FetcherConfigs resolves every configured chain, in order.
func (c *Config) FetcherConfigs() ([]FetcherConfig, error) {
	configs := make([]FetcherConfig, 0, len(c.Chains))
	seen := make(map[uint64]struct{}, len(c.Chains))
	for i := range c.Chains {
		fc, err := c.Chains[i].ToFetcherConfig()
		if err != nil {
			return nil, fmt.Errorf("chain %d: %w", c.Chains[i].ChainID, err)
		}
		if _, ok := seen[fc.Chain.ID()]; ok {
			return nil, fmt.Errorf("chain %d configured twice", fc.Chain.ID())
		}
		seen[fc.Chain.ID()] = struct{}{}
		configs = append(configs, fc)
	}
	return configs, nil
}

func (c *Config) Validate() {
	c.LogConfig.Validate()
	c.FixtureConfig.Validate()
	if c.FixtureConfig.ReplayPath != "" {
		return
	}
	if len(c.Chains) == 0 {
		panic("at least one chain should be configured when not replaying a fixture")
	}
	if _, err := c.FetcherConfigs(); err != nil {
		panic(err)
	}
}

type FixtureConfig struct {
	RecordPath string `json:"record_path"` // RecordPath receives every payload as a JSON array on shutdown
	ReplayPath string `json:"replay_path"` // ReplayPath replaces live fetchers with a recorded fixture
}

func (cfg *FixtureConfig) Validate() {
	if cfg.RecordPath != "" && cfg.ReplayPath != "" {
		panic("record_path and replay_path are mutually exclusive")
	}
}

type MetricsConfig struct {
	Enable  bool   `json:"enable"`
	Address string `json:"address"`
}

type LogConfig struct {
	Level                        string `json:"level"`
	Filename                     string `json:"filename"`
	MaxFileSizeInMB              int    `json:"max_file_size_in_mb"`
	MaxBackupsOfLogFiles         int    `json:"max_backups_of_log_files"`
	MaxAgeToRetainLogFilesInDays int    `json:"max_age_to_retain_log_files_in_days"`
	UseConsoleLogger             bool   `json:"use_console_logger"`
	UseFileLogger                bool   `json:"use_file_logger"`
	Compress                     bool   `json:"compress"`
}

func (cfg *LogConfig) Validate() {
	if cfg.UseFileLogger {
		if cfg.Filename == "" {
			panic("filename should not be empty if use file logger")
		}
		if cfg.MaxFileSizeInMB <= 0 {
			panic("max_file_size_in_mb should be larger than 0 if use file logger")
		}
		if cfg.MaxBackupsOfLogFiles <= 0 {
			panic("max_backups_off_log_files should be larger than 0 if use file logger")
		}
	}
}

// DefaultConfigFromEnv builds a console-logging config for the chain(s) named by RPC_URL and CHAIN_ID.
// RPC_URL and CHAIN_ID may hold comma separated lists of equal length.
func DefaultConfigFromEnv() (*Config, error) {
	rpcAddrs := util.SplitByComma(os.Getenv(EnvVarRPCURL))
	if len(rpcAddrs) == 0 {
		rpcAddrs = []string{DefaultRPCURL}
	}
	chainIDs := util.SplitByComma(os.Getenv(EnvVarChainID))
	if len(chainIDs) == 0 {
		chainIDs = []string{DefaultChainID}
	}
	if len(chainIDs) != len(rpcAddrs) {
		return nil, fmt.Errorf("%s has %d entries but %s has %d", EnvVarChainID, len(chainIDs), EnvVarRPCURL, len(rpcAddrs))
	}
	cfg := &Config{
		LogConfig: LogConfig{
			Level:            DefaultLogLevel,
			UseConsoleLogger: true,
		},
		MetricsConfig: MetricsConfig{Address: DefaultMetricsAddress},
	}
	for i, addr := range rpcAddrs {
		id, err := util.StringToUint64(chainIDs[i])
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvVarChainID, chainIDs[i], err)
		}
		cfg.Chains = append(cfg.Chains, ChainConfig{ChainID: id, RPCAddr: addr})
	}
	return cfg, nil
}

func ParseConfigFromJson(content string) *Config {
	var config Config
	if err := json.Unmarshal([]byte(content), &config); err != nil {
		panic(err)
	}
	return &config
}

func ParseConfigFromFile(filePath string) *Config {
	bz, err := os.ReadFile(filePath)
	if err != nil {
		panic(err)
	}

	var config Config
	if err := json.Unmarshal(bz, &config); err != nil {
		panic(err)
	}
	return &config
}
