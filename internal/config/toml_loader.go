package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/ludo-technologies/setsim/domain"
)

// EnvPrefix is the prefix of environment variables overriding config keys,
// e.g. SETSIM_MINHASH_TOTAL_HASHES
const EnvPrefix = "SETSIM"

// TomlConfigLoader loads .setsim.toml files layered over defaults and
// environment overrides
type TomlConfigLoader struct {
	fs afero.Fs
}

// NewTomlConfigLoader creates a loader reading from the OS filesystem
func NewTomlConfigLoader() *TomlConfigLoader {
	return &TomlConfigLoader{fs: afero.NewOsFs()}
}

// NewTomlConfigLoaderWithFs creates a loader reading from fs
func NewTomlConfigLoaderWithFs(fs afero.Fs) *TomlConfigLoader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &TomlConfigLoader{fs: fs}
}

// LoadConfig resolves configuration with the following priority:
// 1. environment variables (SETSIM_*)
// 2. explicit configPath, or .setsim.toml discovered from startDir upwards
// 3. defaults
// It returns the config together with the file it was read from ("" if none).
func (l *TomlConfigLoader) LoadConfig(configPath, startDir string) (*Config, string, error) {
	v := l.newViper()

	path := configPath
	if path != "" {
		exists, err := afero.Exists(l.fs, path)
		if err != nil {
			return nil, "", domain.NewConfigError(fmt.Sprintf("cannot access config file: %s", path), err)
		}
		if !exists {
			return nil, "", domain.NewFileNotFoundError(path, os.ErrNotExist)
		}
	} else if startDir != "" {
		if found, err := l.FindConfigFile(startDir); err == nil {
			path = found
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, "", domain.NewConfigError(fmt.Sprintf("failed to parse config file: %s", path), err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, "", domain.NewConfigError("failed to decode configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// FindConfigFile walks up the directory tree to find .setsim.toml
func (l *TomlConfigLoader) FindConfigFile(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		dir = startDir
	}
	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if ok, _ := afero.Exists(l.fs, configPath); ok {
			return configPath, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}

func (l *TomlConfigLoader) newViper() *viper.Viper {
	v := viper.New()
	v.SetFs(l.fs)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// every key needs a default so AutomaticEnv applies during Unmarshal
	d := DefaultConfig()
	v.SetDefault("minhash.total_hashes", d.MinHash.TotalHashes)
	v.SetDefault("minhash.hash_family", d.MinHash.HashFamily)
	v.SetDefault("minhash.workers", d.MinHash.Workers)
	v.SetDefault("similarity.threshold", d.Similarity.Threshold)
	v.SetDefault("similarity.empty_set_policy", d.Similarity.EmptySetPolicy)
	v.SetDefault("similarity.exact", d.Similarity.Exact)
	v.SetDefault("input.format", d.Input.Format)
	v.SetDefault("input.key_order", d.Input.KeyOrder)
	v.SetDefault("input.include_patterns", d.Input.IncludePatterns)
	v.SetDefault("input.exclude_patterns", d.Input.ExcludePatterns)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.directory", d.Output.Directory)
	v.SetDefault("output.show_matrix", d.Output.ShowMatrix)
	return v
}
