package repo

import "time"

const (
	AppName = "AxiomCustody"

	// CfgFileName is the default config name
	CfgFileName = "custody.toml"

	// defaultRepoRoot is the path to the default config dir location.
	defaultRepoRoot = "~/.axiom-custody"

	// rootPathEnvVar is the environment variable used to change the path root.
	rootPathEnvVar = "CUSTODY_PATH"

	envPrefix = "CUSTODY"

	pidFileName = "running.pid"

	LogsDirName = "logs"

	DefaultJsonRPCListen = "127.0.0.1:8881"
)

const (
	KVStorageTypeLeveldb = "leveldb"
	KVStorageTypeMemory  = "memory"
	KVStorageCacheSize   = 4096
	KVStorageSync        = true
)

const (
	// DefaultEntryPoint is the relayer address allowed to validate operations.
	DefaultEntryPoint = "0x0000000000000000000000000000000000001008"

	DefaultChainID uint64 = 1356

	MinRecoveryDelay     = 24 * time.Hour
	MaxRecoveryDelay     = 30 * 24 * time.Hour
	DefaultRecoveryDelay = 24 * time.Hour

	DefaultImplementationVersion uint64 = 1
)
