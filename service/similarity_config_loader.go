package service

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"

	"github.com/ludo-technologies/setsim/domain"
	"github.com/ludo-technologies/setsim/internal/config"
)

// SimilarityConfigurationLoader implements the domain.SimilarityConfigurationLoader interface
type SimilarityConfigurationLoader struct {
	loader        *config.TomlConfigLoader
	explicitFlags map[string]bool
}

// NewSimilarityConfigurationLoader creates a loader on the OS filesystem
func NewSimilarityConfigurationLoader() *SimilarityConfigurationLoader {
	return &SimilarityConfigurationLoader{loader: config.NewTomlConfigLoader()}
}

// NewSimilarityConfigurationLoaderWithFs creates a loader reading config files from fs
func NewSimilarityConfigurationLoaderWithFs(fs afero.Fs) *SimilarityConfigurationLoader {
	return &SimilarityConfigurationLoader{loader: config.NewTomlConfigLoaderWithFs(fs)}
}

// WithExplicitFlags records which request fields were set by the caller.
// MergeConfig only lets those fields override the configuration file.
func (c *SimilarityConfigurationLoader) WithExplicitFlags(flags map[string]bool) *SimilarityConfigurationLoader {
	c.explicitFlags = flags
	return c
}

// LoadSimilarityConfig loads configuration from configPath, or discovers
// .setsim.toml from startDir upwards, layered with SETSIM_* environment overrides
func (c *SimilarityConfigurationLoader) LoadSimilarityConfig(configPath, startDir string) (*domain.SimilarityRequest, error) {
	cfg, path, err := c.loader.LoadConfig(configPath, startDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if path != "" {
		log.Debug().Str("config", path).Msg("loaded configuration file")
	}

	req := ConfigToSimilarityRequest(cfg)
	req.ConfigPath = path
	return req, nil
}

// GetDefaultSimilarityConfig returns the default configuration
func (c *SimilarityConfigurationLoader) GetDefaultSimilarityConfig() *domain.SimilarityRequest {
	return ConfigToSimilarityRequest(config.DefaultConfig())
}

// ConfigToSimilarityRequest converts a validated config into a request
func ConfigToSimilarityRequest(cfg *config.Config) *domain.SimilarityRequest {
	format, _, err := ParseOutputFormat(cfg.Output.Format)
	if err != nil {
		format = domain.OutputFormatText
	}

	return &domain.SimilarityRequest{
		InputFormat:     domain.DatasetFormat(cfg.Input.Format),
		KeyOrder:        domain.KeyOrder(cfg.Input.KeyOrder),
		IncludePatterns: append([]string(nil), cfg.Input.IncludePatterns...),
		ExcludePatterns: append([]string(nil), cfg.Input.ExcludePatterns...),
		TotalHashes:     cfg.MinHash.TotalHashes,
		HashFamily:      cfg.MinHash.HashFamily,
		Workers:         cfg.MinHash.Workers,
		Threshold:       cfg.Similarity.Threshold,
		EmptySetPolicy:  domain.EmptySetPolicy(cfg.Similarity.EmptySetPolicy),
		Exact:           cfg.Similarity.Exact,
		OutputFormat:    format,
		ShowMatrix:      cfg.Output.ShowMatrix,
		OutputDirectory: cfg.Output.Directory,
	}
}

// Names of the request fields tracked by MergeConfig. The CLI uses them as flag names.
const (
	FlagThreshold    = "threshold"
	FlagTotalHashes  = "hashes"
	FlagHashFamily   = "hash-family"
	FlagWorkers      = "workers"
	FlagEmptySets    = "empty-sets"
	FlagExact        = "exact"
	FlagInputFormat  = "input-format"
	FlagKeyOrder     = "key-order"
	FlagInclude      = "include"
	FlagExclude      = "exclude"
	FlagOutputFormat = "format"
	FlagShowMatrix   = "show-matrix"
	FlagOutputDir    = "output-dir"
)

// MergeConfig layers the explicitly set fields of override on top of base.
// Per-invocation fields (dataset path, writer, output path, plain mode,
// config path) always come from override.
func (c *SimilarityConfigurationLoader) MergeConfig(base *domain.SimilarityRequest, override *domain.SimilarityRequest) *domain.SimilarityRequest {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	flags := c.explicitFlags
	merged := *base

	merged.DatasetPath = override.DatasetPath
	merged.OutputWriter = override.OutputWriter
	merged.OutputPath = override.OutputPath
	merged.Plain = override.Plain
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	merged.TotalHashes = config.Merge(base.TotalHashes, override.TotalHashes, FlagTotalHashes, flags)
	merged.HashFamily = config.Merge(base.HashFamily, override.HashFamily, FlagHashFamily, flags)
	merged.Workers = config.Merge(base.Workers, override.Workers, FlagWorkers, flags)

	merged.Threshold = config.Merge(base.Threshold, override.Threshold, FlagThreshold, flags)
	merged.EmptySetPolicy = config.Merge(base.EmptySetPolicy, override.EmptySetPolicy, FlagEmptySets, flags)
	merged.Exact = config.Merge(base.Exact, override.Exact, FlagExact, flags)

	merged.InputFormat = config.Merge(base.InputFormat, override.InputFormat, FlagInputFormat, flags)
	merged.KeyOrder = config.Merge(base.KeyOrder, override.KeyOrder, FlagKeyOrder, flags)
	merged.IncludePatterns = config.MergeStringSlice(base.IncludePatterns, override.IncludePatterns, FlagInclude, flags)
	merged.ExcludePatterns = config.MergeStringSlice(base.ExcludePatterns, override.ExcludePatterns, FlagExclude, flags)

	merged.OutputFormat = config.Merge(base.OutputFormat, override.OutputFormat, FlagOutputFormat, flags)
	merged.ShowMatrix = config.Merge(base.ShowMatrix, override.ShowMatrix, FlagShowMatrix, flags)
	merged.OutputDirectory = config.Merge(base.OutputDirectory, override.OutputDirectory, FlagOutputDir, flags)

	return &merged
}
