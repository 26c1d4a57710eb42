package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gobwas/glob"
)

// Validate runs every section validator and returns the first failure.
func Validate(cfg *Config) error {
	validators := []func(*Config) error{
		validateVersion,
		validateGitHub,
		validateAnalysis,
		validateResolver,
		validateLocal,
		validateServer,
		validateHistory,
	}
	for _, validate := range validators {
		if err := validate(cfg); err != nil {
			return err
		}
	}
	return nil
}

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateGitHub(cfg *Config) error {
	u, err := url.Parse(cfg.GitHub.APIBase)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("github.api_base must be an absolute URL, got %q", cfg.GitHub.APIBase)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("github.api_base scheme must be http or https, got %q", u.Scheme)
	}
	for i, branch := range cfg.GitHub.Branches {
		if strings.TrimSpace(branch) == "" {
			return fmt.Errorf("github.branches[%d] must not be empty", i)
		}
	}
	return nil
}

func validateAnalysis(cfg *Config) error {
	a := cfg.Analysis
	if a.BatchSize > a.MaxFiles {
		return fmt.Errorf("analysis.batch_size (%d) must not exceed analysis.max_files (%d)", a.BatchSize, a.MaxFiles)
	}
	if len(a.CodeExtensions) == 0 {
		return fmt.Errorf("analysis.code_extensions must not be empty")
	}
	return nil
}

func validateResolver(cfg *Config) error {
	r := cfg.Resolver
	if strings.HasPrefix(r.AliasPrefix, ".") {
		return fmt.Errorf("resolver.alias_prefix %q must not start with '.'", r.AliasPrefix)
	}
	if strings.HasPrefix(r.AliasTarget, "/") || strings.Contains(r.AliasTarget, "..") {
		return fmt.Errorf("resolver.alias_target %q must be repository-relative", r.AliasTarget)
	}
	return nil
}

func validateLocal(cfg *Config) error {
	for i, pattern := range cfg.Local.Exclude {
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("local.exclude[%d] %q: %w", i, pattern, err)
		}
	}
	return nil
}

func validateServer(cfg *Config) error {
	if !strings.Contains(cfg.Server.Address, ":") {
		return fmt.Errorf("server.address must be host:port, got %q", cfg.Server.Address)
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if cfg.History.Enabled && strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty when history is enabled")
	}
	return nil
}
