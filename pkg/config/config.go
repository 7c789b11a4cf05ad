package config

import (
	"os"
	"time"

	"github.com/fcdb-io/fcdb/pkg/fcdberr"
	"gopkg.in/yaml.v3"
)

// Config is fcdbd's top-level configuration, loaded from a single YAML
// file. A field the file omits or sets to zero takes its Default()
// value (planner.epsilon excepted, where zero is a valid rate), but a
// field that is present and out of range is a load-time error rather
// than a silently clamped value.
type Config struct {
	// DataDir is the directory a store's pack files, cidx, and catalog
	// live under.
	DataDir string `yaml:"data_dir"`

	CAS      CASConfig      `yaml:"cas"`
	Planner  PlannerConfig  `yaml:"planner"`
	Executor ExecutorConfig `yaml:"executor"`
	Manifest ManifestConfig `yaml:"manifest"`
}

// CASConfig covers pack sizing, Bloom false-positive targets, the
// adaptation interval, and the optional verify-on-read integrity
// check.
type CASConfig struct {
	PackSizeTargetMB   int           `yaml:"pack_size_target_mb"`
	GlobalFPRate       float64       `yaml:"global_fp_rate"`
	PackFPRate         float64       `yaml:"pack_fp_rate"`
	ShardFPRate        float64       `yaml:"shard_fp_rate"`
	AdaptationInterval time.Duration `yaml:"adaptation_interval"`
	VerifyOnRead       bool          `yaml:"verify_on_read"`

	// EncryptionPassphrase, if non-empty, enables AES-256-GCM
	// payload-at-rest encryption derived from this passphrase via
	// pkg/security.NewPayloadCipherFromPassphrase. Empty disables
	// encryption — the default.
	EncryptionPassphrase string `yaml:"encryption_passphrase"`
}

// PlannerConfig covers the adaptive planner's exploration rate and
// rolling observation window.
type PlannerConfig struct {
	Epsilon        float64 `yaml:"epsilon"`
	WindowCapacity int     `yaml:"window_capacity"`
}

// ExecutorConfig covers the SafeExecutor's per-transaction timeout.
type ExecutorConfig struct {
	TxnTimeout time.Duration `yaml:"txn_timeout"`
}

// ManifestConfig covers the query-plan manifest's eviction capacity.
type ManifestConfig struct {
	Capacity int `yaml:"capacity"`
}

// Default returns a Config with every field set to its documented
// default, matching what an empty YAML file produces after Load's
// defaulting pass.
func Default() Config {
	return Config{
		DataDir: "./data",
		CAS: CASConfig{
			PackSizeTargetMB:   256,
			GlobalFPRate:       1e-6,
			PackFPRate:         1e-7,
			ShardFPRate:        1e-8,
			AdaptationInterval: 5 * time.Minute,
			VerifyOnRead:       false,
		},
		Planner: PlannerConfig{
			Epsilon:        0.10,
			WindowCapacity: 100,
		},
		Executor: ExecutorConfig{
			TxnTimeout: 5 * time.Second,
		},
		Manifest: ManifestConfig{
			Capacity: 10_000,
		},
	}
}

// Load reads and parses the YAML file at path, applies defaults to any
// field the file left zero, and validates the result. A missing file,
// malformed YAML, or a field outside its valid range is returned as a
// KindMalformed error — fcdbd treats configuration failure as a
// startup error, never a silently clamped default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fcdberr.New(fcdberr.KindMalformed, "config.Load", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fcdberr.New(fcdberr.KindMalformed, "config.Load", err)
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyDefaults fills in any field yaml.Unmarshal left at its Go zero
// value with the corresponding Default() value. Load seeds the Config
// with Default() before unmarshaling, so a field the file omits already
// carries its default; this pass additionally turns a field the file
// sets to zero explicitly into its default. Planner.Epsilon is left as
// it is: zero is a valid exploration rate (pure exploitation).
func applyDefaults(cfg *Config) {
	d := Default()
	if cfg.DataDir == "" {
		cfg.DataDir = d.DataDir
	}
	if cfg.CAS.PackSizeTargetMB == 0 {
		cfg.CAS.PackSizeTargetMB = d.CAS.PackSizeTargetMB
	}
	if cfg.CAS.GlobalFPRate == 0 {
		cfg.CAS.GlobalFPRate = d.CAS.GlobalFPRate
	}
	if cfg.CAS.PackFPRate == 0 {
		cfg.CAS.PackFPRate = d.CAS.PackFPRate
	}
	if cfg.CAS.ShardFPRate == 0 {
		cfg.CAS.ShardFPRate = d.CAS.ShardFPRate
	}
	if cfg.CAS.AdaptationInterval == 0 {
		cfg.CAS.AdaptationInterval = d.CAS.AdaptationInterval
	}
	if cfg.Planner.WindowCapacity == 0 {
		cfg.Planner.WindowCapacity = d.Planner.WindowCapacity
	}
	if cfg.Executor.TxnTimeout == 0 {
		cfg.Executor.TxnTimeout = d.Executor.TxnTimeout
	}
	if cfg.Manifest.Capacity == 0 {
		cfg.Manifest.Capacity = d.Manifest.Capacity
	}
}

// Validate fails closed on any field outside its valid range.
func (c Config) Validate() error {
	if c.DataDir == "" {
		return fcdberr.New(fcdberr.KindMalformed, "config.Validate", errEmptyDataDir)
	}
	if c.CAS.PackSizeTargetMB <= 0 {
		return fcdberr.New(fcdberr.KindMalformed, "config.Validate", errBadPackSize)
	}
	if !validFPRate(c.CAS.GlobalFPRate) || !validFPRate(c.CAS.PackFPRate) || !validFPRate(c.CAS.ShardFPRate) {
		return fcdberr.New(fcdberr.KindMalformed, "config.Validate", errBadFPRate)
	}
	if c.CAS.AdaptationInterval <= 0 {
		return fcdberr.New(fcdberr.KindMalformed, "config.Validate", errBadInterval)
	}
	if c.Planner.Epsilon < 0 || c.Planner.Epsilon > 1 {
		return fcdberr.New(fcdberr.KindMalformed, "config.Validate", errBadEpsilon)
	}
	if c.Planner.WindowCapacity <= 0 {
		return fcdberr.New(fcdberr.KindMalformed, "config.Validate", errBadWindow)
	}
	if c.Executor.TxnTimeout <= 0 {
		return fcdberr.New(fcdberr.KindMalformed, "config.Validate", errBadTimeout)
	}
	if c.Manifest.Capacity <= 0 {
		return fcdberr.New(fcdberr.KindMalformed, "config.Validate", errBadCapacity)
	}
	return nil
}

// PackSizeTargetBytes converts PackSizeTargetMB to bytes for
// pkg/cas.Options.
func (c CASConfig) PackSizeTargetBytes() uint64 {
	return uint64(c.PackSizeTargetMB) * 1024 * 1024
}

func validFPRate(r float64) bool {
	return r > 0 && r < 1
}

type configError string

func (e configError) Error() string { return string(e) }

const (
	errEmptyDataDir configError = "data_dir must not be empty"
	errBadPackSize  configError = "cas.pack_size_target_mb must be positive"
	errBadFPRate    configError = "bloom false-positive rates must be in (0, 1)"
	errBadInterval  configError = "cas.adaptation_interval must be positive"
	errBadEpsilon   configError = "planner.epsilon must be in [0, 1]"
	errBadWindow    configError = "planner.window_capacity must be positive"
	errBadTimeout   configError = "executor.txn_timeout must be positive"
	errBadCapacity  configError = "manifest.capacity must be positive"
)
