package config

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/ludo-technologies/setsim/domain"
)

// ConfigFileName is the dedicated configuration file discovered by walking up directories
const ConfigFileName = ".setsim.toml"

// Config represents the main configuration structure
type Config struct {
	// MinHash holds signature construction settings
	MinHash MinHashConfig `toml:"minhash" mapstructure:"minhash"`

	// Similarity holds pair enumeration settings
	Similarity SimilarityConfig `toml:"similarity" mapstructure:"similarity"`

	// Input holds dataset loading settings
	Input InputConfig `toml:"input" mapstructure:"input"`

	// Output holds output formatting settings
	Output OutputConfig `toml:"output" mapstructure:"output"`
}

// MinHashConfig holds configuration for signature construction
type MinHashConfig struct {
	// TotalHashes is the number of seeded hash functions, i.e. the signature length
	TotalHashes int `toml:"total_hashes" mapstructure:"total_hashes" validate:"gte=1"`

	// HashFamily selects the keyed hash family: xxhash, splitmix or universal
	HashFamily string `toml:"hash_family" mapstructure:"hash_family" validate:"oneof=xxhash splitmix universal"`

	// Workers is the number of rows built concurrently, 0 = one per CPU
	Workers int `toml:"workers" mapstructure:"workers" validate:"gte=0"`
}

// SimilarityConfig holds configuration for similar pair enumeration
type SimilarityConfig struct {
	// Threshold is the maximum estimated distance (1 - similarity) of a reported pair
	Threshold float64 `toml:"threshold" mapstructure:"threshold" validate:"gte=0,lte=1"`

	// EmptySetPolicy is exclude or sentinel
	EmptySetPolicy string `toml:"empty_set_policy" mapstructure:"empty_set_policy" validate:"oneof=exclude sentinel"`

	// Exact adds an exact Jaccard accuracy report for the reported pairs
	Exact bool `toml:"exact" mapstructure:"exact"`
}

// InputConfig holds dataset loading configuration
type InputConfig struct {
	Format          string   `toml:"format" mapstructure:"format" validate:"oneof=auto json yaml toml csv dir"`
	KeyOrder        string   `toml:"key_order" mapstructure:"key_order" validate:"oneof=sorted insertion"`
	IncludePatterns []string `toml:"include_patterns" mapstructure:"include_patterns"`
	ExcludePatterns []string `toml:"exclude_patterns" mapstructure:"exclude_patterns"`
}

// OutputConfig holds output formatting configuration
type OutputConfig struct {
	Format     string `toml:"format" mapstructure:"format" validate:"oneof=text json yaml csv"`
	Directory  string `toml:"directory" mapstructure:"directory"`
	ShowMatrix bool   `toml:"show_matrix" mapstructure:"show_matrix"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		MinHash: MinHashConfig{
			TotalHashes: domain.DefaultTotalHashes,
			HashFamily:  domain.DefaultHashFamily,
			Workers:     domain.DefaultWorkers,
		},
		Similarity: SimilarityConfig{
			Threshold:      domain.DefaultThreshold,
			EmptySetPolicy: string(domain.DefaultEmptySetPolicy),
			Exact:          false,
		},
		Input: InputConfig{
			Format:          string(domain.DatasetFormatAuto),
			KeyOrder:        string(domain.DefaultKeyOrder),
			IncludePatterns: []string{"**/*.txt"},
			ExcludePatterns: []string{},
		},
		Output: OutputConfig{
			Format:     string(domain.OutputFormatText),
			Directory:  "",
			ShowMatrix: false,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration values
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewConfigError("invalid configuration", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.StructNamespace() == "Config.MinHash.TotalHashes" {
			return domain.NewInvalidTotalHashesError(c.MinHash.TotalHashes)
		}
		msgs = append(msgs, describeFieldError(fe))
	}
	return domain.NewConfigError(strings.Join(msgs, "; "), nil)
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be >= %s, got %v", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be <= %s, got %v", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// SaveConfig writes cfg as TOML to path on fs
func SaveConfig(fs afero.Fs, cfg *Config, path string) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(cfg); err != nil {
		return domain.NewConfigError("failed to encode configuration", err)
	}
	if err := afero.WriteFile(fs, path, buf.Bytes(), 0o644); err != nil {
		return domain.NewConfigError(fmt.Sprintf("failed to write configuration: %s", path), err)
	}
	return nil
}
