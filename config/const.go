package config

const (
	FlagConfigPath         = "config-path"
	FlagConfigType         = "config-type"
	FlagConfigAwsRegion    = "aws-region"
	FlagConfigAwsSecretKey = "aws-secret-key"
	FlagRecordPath         = "record-path"
	FlagReplayPath         = "replay-path"

	LocalConfig = "local"
	AWSConfig   = "aws"

	EnvVarConfigType     = "CONFIG_TYPE"
	EnvVarConfigFilePath = "CONFIG_FILE_PATH"
	EnvVarRPCURL         = "RPC_URL"
	EnvVarChainID        = "CHAIN_ID"
	EnvVarRecordPath     = "RECORD_PATH"
	EnvVarReplayPath     = "REPLAY_PATH"

	DefaultRPCURL         = "http://127.0.0.1:8545"
	DefaultChainID        = "1"
	DefaultLogLevel       = "INFO"
	DefaultMetricsAddress = "0.0.0.0:9090"
)
