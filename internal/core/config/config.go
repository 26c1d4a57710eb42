package config

import (
	"time"
)

type Config struct {
	Version  int      `toml:"version"`
	GitHub   GitHub   `toml:"github"`
	Analysis Analysis `toml:"analysis"`
	Resolver Resolver `toml:"resolver"`
	Local    Local    `toml:"local"`
	Server   Server   `toml:"server"`
	History  History  `toml:"history"`
	Tracing  Tracing  `toml:"tracing"`
	Watch    Watch    `toml:"watch"`
}

type GitHub struct {
	APIBase       string        `toml:"api_base"`
	Token         string        `toml:"token"`
	Branches      []string      `toml:"branches"`
	Timeout       time.Duration `toml:"timeout"`
	RatePerSecond float64       `toml:"rate_per_second"`
	Burst         int           `toml:"burst"`
	CacheSize     int           `toml:"cache_size"`
	Breaker       Breaker       `toml:"breaker"`
}

type Breaker struct {
	MaxFailures uint32        `toml:"max_failures"`
	OpenTimeout time.Duration `toml:"open_timeout"`
}

// Analysis holds the engine's heuristic thresholds.
type Analysis struct {
	MaxFiles          int      `toml:"max_files"`
	BatchSize         int      `toml:"batch_size"`
	MaxCycles         int      `toml:"max_cycles"`
	GodFileThreshold  int      `toml:"god_file_threshold"`
	CouplingThreshold float64  `toml:"coupling_threshold"`
	HotspotLimit      int      `toml:"hotspot_limit"`
	CodeExtensions    []string `toml:"code_extensions"`
	ScoreExtensions   []string `toml:"score_extensions"`
}

type Resolver struct {
	AliasPrefix     string   `toml:"alias_prefix"`
	AliasTarget     string   `toml:"alias_target"`
	ProbeExtensions []string `toml:"probe_extensions"`
	IndexExtensions []string `toml:"index_extensions"`
}

type Local struct {
	Exclude          []string `toml:"exclude"`
	RespectGitignore *bool    `toml:"respect_gitignore"`
}

type Server struct {
	Address        string        `toml:"address"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	RatePerSecond  float64       `toml:"rate_per_second"`
	Burst          int           `toml:"burst"`
	ClientTTL      time.Duration `toml:"client_ttl"`
}

type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type Tracing struct {
	Enabled     bool   `toml:"enabled"`
	Endpoint    string `toml:"endpoint"`
	Insecure    bool   `toml:"insecure"`
	ServiceName string `toml:"service_name"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

// DefaultConfig returns a configuration with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func (l Local) GitignoreEnabled() bool {
	return l.RespectGitignore == nil || *l.RespectGitignore
}
