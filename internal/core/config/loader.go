package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(string(data))
}

// Parse decodes TOML text, applies defaults and env overrides, then validates.
func Parse(data string) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	ApplyEnvOverrides(&cfg)
	normalize(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to DefaultConfig otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		ApplyEnvOverrides(cfg)
		normalize(cfg)
		return cfg, Validate(cfg)
	}
	return Load(path)
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if strings.TrimSpace(cfg.GitHub.APIBase) == "" {
		cfg.GitHub.APIBase = "https://api.github.com"
	}
	if len(cfg.GitHub.Branches) == 0 {
		cfg.GitHub.Branches = []string{"main", "master"}
	}
	if cfg.GitHub.Timeout <= 0 {
		cfg.GitHub.Timeout = 15 * time.Second
	}
	if cfg.GitHub.RatePerSecond <= 0 {
		cfg.GitHub.RatePerSecond = 20
	}
	if cfg.GitHub.Burst <= 0 {
		cfg.GitHub.Burst = 10
	}
	if cfg.GitHub.CacheSize <= 0 {
		cfg.GitHub.CacheSize = 2048
	}
	if cfg.GitHub.Breaker.MaxFailures == 0 {
		cfg.GitHub.Breaker.MaxFailures = 5
	}
	if cfg.GitHub.Breaker.OpenTimeout <= 0 {
		cfg.GitHub.Breaker.OpenTimeout = 30 * time.Second
	}

	// Caps mirror the hosted analyzer: 80 fetched files in batches of 10.
	if cfg.Analysis.MaxFiles <= 0 {
		cfg.Analysis.MaxFiles = 80
	}
	if cfg.Analysis.BatchSize <= 0 {
		cfg.Analysis.BatchSize = 10
	}
	if cfg.Analysis.MaxCycles <= 0 {
		cfg.Analysis.MaxCycles = 10
	}
	if cfg.Analysis.GodFileThreshold <= 0 {
		cfg.Analysis.GodFileThreshold = 15
	}
	if cfg.Analysis.CouplingThreshold <= 0 {
		cfg.Analysis.CouplingThreshold = 5
	}
	if cfg.Analysis.HotspotLimit <= 0 {
		cfg.Analysis.HotspotLimit = 10
	}
	if len(cfg.Analysis.CodeExtensions) == 0 {
		cfg.Analysis.CodeExtensions = []string{"ts", "tsx", "js", "jsx", "py", "go", "rs"}
	}
	if len(cfg.Analysis.ScoreExtensions) == 0 {
		cfg.Analysis.ScoreExtensions = []string{"ts", "tsx", "js", "jsx", "py", "go", "rs", "css"}
	}

	if cfg.Resolver.AliasPrefix == "" {
		cfg.Resolver.AliasPrefix = "@/"
	}
	if cfg.Resolver.AliasTarget == "" {
		cfg.Resolver.AliasTarget = "src/"
	}
	if len(cfg.Resolver.ProbeExtensions) == 0 {
		cfg.Resolver.ProbeExtensions = []string{".ts", ".tsx", ".js", ".jsx", ".css", ".py"}
	}
	if len(cfg.Resolver.IndexExtensions) == 0 {
		cfg.Resolver.IndexExtensions = []string{".ts", ".tsx", ".js", ".jsx"}
	}

	if len(cfg.Local.Exclude) == 0 {
		cfg.Local.Exclude = []string{".git/**", "node_modules/**", "vendor/**"}
	}

	if strings.TrimSpace(cfg.Server.Address) == "" {
		cfg.Server.Address = "127.0.0.1:8080"
	}
	if cfg.Server.RequestTimeout <= 0 {
		cfg.Server.RequestTimeout = 60 * time.Second
	}
	if cfg.Server.RatePerSecond <= 0 {
		cfg.Server.RatePerSecond = 1
	}
	if cfg.Server.Burst <= 0 {
		cfg.Server.Burst = 5
	}
	if cfg.Server.ClientTTL <= 0 {
		cfg.Server.ClientTTL = 10 * time.Minute
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "data/history.db"
	}

	if strings.TrimSpace(cfg.Tracing.Endpoint) == "" {
		cfg.Tracing.Endpoint = "localhost:4317"
	}
	if strings.TrimSpace(cfg.Tracing.ServiceName) == "" {
		cfg.Tracing.ServiceName = "repograph"
	}

	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
}

func normalize(cfg *Config) {
	cfg.GitHub.APIBase = strings.TrimRight(strings.TrimSpace(cfg.GitHub.APIBase), "/")
	cfg.GitHub.Token = strings.TrimSpace(cfg.GitHub.Token)
	cfg.Analysis.CodeExtensions = normalizeExtensions(cfg.Analysis.CodeExtensions, false)
	cfg.Analysis.ScoreExtensions = normalizeExtensions(cfg.Analysis.ScoreExtensions, false)
	cfg.Resolver.ProbeExtensions = normalizeExtensions(cfg.Resolver.ProbeExtensions, true)
	cfg.Resolver.IndexExtensions = normalizeExtensions(cfg.Resolver.IndexExtensions, true)
}

// normalizeExtensions lowercases entries and enforces a leading dot when dotted is set.
func normalizeExtensions(exts []string, dotted bool) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		ext = strings.TrimPrefix(ext, ".")
		if ext == "" {
			continue
		}
		if dotted {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}
