package repo

import (
	"os"
	"path"
	"reflect"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

type Duration time.Duration

func (d *Duration) MarshalText() (text []byte, err error) {
	return []byte(time.Duration(*d).String()), nil
}

func (d *Duration) UnmarshalText(b []byte) error {
	x, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(x)
	return nil
}

func StringToTimeDurationHookFunc() mapstructure.DecodeHookFunc {
	return func(
		f reflect.Type,
		t reflect.Type,
		data any) (any, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		if t != reflect.TypeOf(Duration(5)) {
			return data, nil
		}

		d, err := time.ParseDuration(data.(string))
		if err != nil {
			return nil, err
		}
		return Duration(d), nil
	}
}

func (d *Duration) ToDuration() time.Duration {
	return time.Duration(*d)
}

func (d *Duration) String() string {
	return time.Duration(*d).String()
}

type Config struct {
	Log     Log     `mapstructure:"log" toml:"log"`
	Storage Storage `mapstructure:"storage" toml:"storage"`
	Account Account `mapstructure:"account" toml:"account"`
	JsonRPC JsonRPC `mapstructure:"jsonrpc" toml:"jsonrpc"`
	Monitor Monitor `mapstructure:"monitor" toml:"monitor"`
}

type Log struct {
	Level            string    `mapstructure:"level" toml:"level"`
	Filename         string    `mapstructure:"filename" toml:"filename"`
	ReportCaller     bool      `mapstructure:"report_caller" toml:"report_caller"`
	EnableColor      bool      `mapstructure:"enable_color" toml:"enable_color"`
	DisableTimestamp bool      `mapstructure:"disable_timestamp" toml:"disable_timestamp"`
	Module           LogModule `mapstructure:"module" toml:"module"`
}

type LogModule struct {
	API            string `mapstructure:"api" toml:"api"`
	Executor       string `mapstructure:"executor" toml:"executor"`
	Ledger         string `mapstructure:"ledger" toml:"ledger"`
	Storage        string `mapstructure:"storage" toml:"storage"`
	SystemContract string `mapstructure:"system_contract" toml:"system_contract"`
}

type Storage struct {
	KvType string `mapstructure:"kv_type" toml:"kv_type"`

	// entries kept in the read cache in front of the kv store
	KvCacheSize int  `mapstructure:"kv_cache_size" toml:"kv_cache_size"`
	Sync        bool `mapstructure:"sync" toml:"sync"`
}

type Account struct {
	EntryPoint           string   `mapstructure:"entry_point" toml:"entry_point"`
	ChainID              uint64   `mapstructure:"chain_id" toml:"chain_id"`
	MinRecoveryDelay     Duration `mapstructure:"min_recovery_delay" toml:"min_recovery_delay"`
	MaxRecoveryDelay     Duration `mapstructure:"max_recovery_delay" toml:"max_recovery_delay"`
	DefaultRecoveryDelay Duration `mapstructure:"default_recovery_delay" toml:"default_recovery_delay"`

	// implementation version new accounts are created with
	ImplementationVersion uint64 `mapstructure:"implementation_version" toml:"implementation_version"`
}

type JsonRPC struct {
	Listen string `mapstructure:"listen" toml:"listen"`
}

type Monitor struct {
	Enable bool   `mapstructure:"enable" toml:"enable"`
	Listen string `mapstructure:"listen" toml:"listen"`
}

func (c *Config) Bytes() ([]byte, error) {
	ret, err := MarshalConfig(c)
	if err != nil {
		return nil, err
	}
	return []byte(ret), nil
}

// Check validates values that cannot be expressed by the toml types.
func (c *Config) Check() error {
	switch c.Storage.KvType {
	case KVStorageTypeLeveldb, KVStorageTypeMemory:
	default:
		return errors.Errorf("unknown kv type %q, expect %s or %s", c.Storage.KvType, KVStorageTypeLeveldb, KVStorageTypeMemory)
	}

	if !common.IsHexAddress(c.Account.EntryPoint) || common.HexToAddress(c.Account.EntryPoint) == (common.Address{}) {
		return errors.Errorf("invalid entry point address %q", c.Account.EntryPoint)
	}

	if c.Account.ImplementationVersion == 0 {
		return errors.New("account implementation version must be positive")
	}

	if c.JsonRPC.Listen == "" {
		return errors.New("empty jsonrpc listen address")
	}

	minDelay, maxDelay, defaultDelay := c.Account.MinRecoveryDelay.ToDuration(), c.Account.MaxRecoveryDelay.ToDuration(), c.Account.DefaultRecoveryDelay.ToDuration()
	if minDelay < time.Second || minDelay > maxDelay {
		return errors.Errorf("invalid recovery delay bounds [%s, %s]", minDelay, maxDelay)
	}
	if defaultDelay < minDelay || defaultDelay > maxDelay {
		return errors.Errorf("default recovery delay %s out of bounds [%s, %s]", defaultDelay, minDelay, maxDelay)
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Log: Log{
			Level:            "info",
			Filename:         "custody",
			ReportCaller:     false,
			EnableColor:      true,
			DisableTimestamp: false,
			Module: LogModule{
				API:            "info",
				Executor:       "info",
				Ledger:         "info",
				Storage:        "info",
				SystemContract: "info",
			},
		},
		Storage: Storage{
			KvType:      KVStorageTypeLeveldb,
			KvCacheSize: KVStorageCacheSize,
			Sync:        KVStorageSync,
		},
		Account: Account{
			EntryPoint:            DefaultEntryPoint,
			ChainID:               DefaultChainID,
			MinRecoveryDelay:      Duration(MinRecoveryDelay),
			MaxRecoveryDelay:      Duration(MaxRecoveryDelay),
			DefaultRecoveryDelay:  Duration(DefaultRecoveryDelay),
			ImplementationVersion: DefaultImplementationVersion,
		},
		JsonRPC: JsonRPC{
			Listen: DefaultJsonRPCListen,
		},
		Monitor: Monitor{
			Enable: false,
			Listen: "127.0.0.1:40011",
		},
	}
}

func LoadConfig(repoRoot string) (*Config, error) {
	cfg, err := func() (*Config, error) {
		cfg := DefaultConfig()
		cfgPath := path.Join(repoRoot, CfgFileName)
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			err := os.MkdirAll(repoRoot, 0755)
			if err != nil {
				return nil, errors.Wrap(err, "failed to build default config")
			}

			if err := writeConfigWithEnv(cfgPath, cfg); err != nil {
				return nil, errors.Wrap(err, "failed to build default config")
			}
		} else {
			if err := CheckWritable(repoRoot); err != nil {
				return nil, err
			}
			if err := readConfigFromFile(cfgPath, cfg); err != nil {
				return nil, err
			}
		}

		return cfg, nil
	}()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Check(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}
