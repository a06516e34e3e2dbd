package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bnb-chain/block-feed/config"
	"github.com/bnb-chain/block-feed/fixture"
	"github.com/bnb-chain/block-feed/logging"
	"github.com/bnb-chain/block-feed/metrics"
	"github.com/bnb-chain/block-feed/stream"
	"github.com/bnb-chain/block-feed/syncer"
	"github.com/bnb-chain/block-feed/types"
)

const (
	MaxDrainPerTick = 64
	DrainInterval   = 100 * time.Millisecond
)

func initFlags() {
	flag.String(config.FlagConfigPath, "", "config file path")
	flag.String(config.FlagConfigType, "", "config type, local or aws")
	flag.String(config.FlagConfigAwsRegion, "", "aws region")
	flag.String(config.FlagConfigAwsSecretKey, "", "aws secret key")
	flag.String(config.FlagRecordPath, "", "record every payload to this fixture file on exit")
	flag.String(config.FlagReplayPath, "", "replay this fixture file instead of fetching")

	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
	pflag.Parse()
	err := viper.BindPFlags(pflag.CommandLine)
	if err != nil {
		panic(err)
	}
}

func printUsage() {
	fmt.Print("usage: ./block-feed --config-type local --config-path configFile\n")
	fmt.Print("usage: ./block-feed --config-type aws --aws-region awsRegion --aws-secret-key awsSecretKey\n")
	fmt.Print("usage: RPC_URL=http://127.0.0.1:8545 CHAIN_ID=31337 ./block-feed [--record-path fixture.json]\n")
	fmt.Print("usage: ./block-feed --replay-path fixture.json\n")
}

func loadConfig() (*config.Config, error) {
	configType := viper.GetString(config.FlagConfigType)
	if configType == "" {
		configType = os.Getenv(config.EnvVarConfigType)
	}
	switch configType {
	case config.AWSConfig:
		awsSecretKey := viper.GetString(config.FlagConfigAwsSecretKey)
		awsRegion := viper.GetString(config.FlagConfigAwsRegion)
		if awsSecretKey == "" || awsRegion == "" {
			printUsage()
			return nil, errors.New("aws config requires region and secret key")
		}
		configContent, err := config.GetSecret(awsSecretKey, awsRegion)
		if err != nil {
			return nil, fmt.Errorf("get aws config: %w", err)
		}
		return config.ParseConfigFromJson(configContent), nil
	case config.LocalConfig, "":
		configFilePath := viper.GetString(config.FlagConfigPath)
		if configFilePath == "" {
			configFilePath = os.Getenv(config.EnvVarConfigFilePath)
		}
		if configFilePath == "" {
			return config.DefaultConfigFromEnv()
		}
		return config.ParseConfigFromFile(configFilePath), nil
	default:
		printUsage()
		return nil, fmt.Errorf("unknown config type %q", configType)
	}
}

func applyFixtureOverrides(cfg *config.Config) {
	if p := os.Getenv(config.EnvVarRecordPath); p != "" {
		cfg.FixtureConfig.RecordPath = p
	}
	if p := os.Getenv(config.EnvVarReplayPath); p != "" {
		cfg.FixtureConfig.ReplayPath = p
	}
	if p := viper.GetString(config.FlagRecordPath); p != "" {
		cfg.FixtureConfig.RecordPath = p
	}
	if p := viper.GetString(config.FlagReplayPath); p != "" {
		cfg.FixtureConfig.ReplayPath = p
	}
}

// buildPipeline returns the stream to consume and, when recording, the recorder feeding on it.
func buildPipeline(cfg *config.Config) (*stream.Stream, *fixture.Recorder, error) {
	if cfg.FixtureConfig.ReplayPath != "" {
		s, err := fixture.Replay(cfg.FixtureConfig.ReplayPath)
		return s, nil, err
	}

	fetcherConfigs, err := cfg.FetcherConfigs()
	if err != nil {
		return nil, nil, err
	}
	for _, fc := range fetcherConfigs {
		logging.Logger.Infof("fetching %s (chain id %d, op stack %t) from %s", fc.Chain, fc.Chain.ID(), fc.Chain.IsOpStack(), fc.RPCURL.Redacted())
	}
	s, err := stream.FanIn(syncer.NewEVMFetcher(), fetcherConfigs)
	if err != nil {
		return nil, nil, err
	}
	if cfg.FixtureConfig.RecordPath == "" {
		return s, nil, nil
	}
	recorder := fixture.NewRecorder(cfg.FixtureConfig.RecordPath)
	return recorder.Tap(s), recorder, nil
}

// drain takes at most max payloads without blocking. closed reports that the stream ended.
func drain(s *stream.Stream, max int, handle func(*types.BlockPayload)) (n int, closed bool) {
	for n < max {
		p, err := s.TryRecv()
		if err != nil {
			return n, errors.Is(err, stream.ErrStreamClosed)
		}
		handle(p)
		n++
	}
	return n, false
}

func logPayload(p *types.BlockPayload) {
	if p.L1OriginNumber != nil {
		logging.Logger.Infof("[%s] block %d: %d txs, gas %d/%d, l1 origin %d", p.Chain, p.Number, p.TxCount, p.GasUsed, p.GasLimit, *p.L1OriginNumber)
		return
	}
	logging.Logger.Infof("[%s] block %d: %d txs, gas %d/%d", p.Chain, p.Number, p.TxCount, p.GasUsed, p.GasLimit)
}

func run(ctx context.Context, s *stream.Stream) {
	ticker := time.NewTicker(DrainInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logging.Logger.Info("shutting down")
			return
		case <-ticker.C:
			if _, closed := drain(s, MaxDrainPerTick, logPayload); closed {
				logging.Logger.Info("stream closed")
				return
			}
		}
	}
}

func main() {
	initFlags()
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("load config error, err=%s\n", err.Error())
		os.Exit(1)
	}
	if cfg == nil {
		panic("failed to get configuration")
	}
	applyFixtureOverrides(cfg)
	cfg.Validate()
	logging.InitLogger(&cfg.LogConfig)

	if cfg.MetricsConfig.Enable {
		address := cfg.MetricsConfig.Address
		if address == "" {
			address = config.DefaultMetricsAddress
		}
		metrics.NewMetrics(address).Start()
	}

	s, recorder, err := buildPipeline(cfg)
	if err != nil {
		logging.Logger.Errorf("failed to start, err=%s", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	run(ctx, s)
	s.Close()

	if recorder != nil {
		if err := recorder.Flush(); err != nil {
			logging.Logger.Errorf("failed to write fixture, err=%s", err.Error())
			os.Exit(1)
		}
	}
}
