package mcp

import (
	"github.com/ludo-technologies/setsim/app"
	"github.com/ludo-technologies/setsim/domain"
	"github.com/ludo-technologies/setsim/service"
)

// Dependencies aggregates the shared services required by MCP handlers.
type Dependencies struct {
	reader     domain.DatasetReader
	similarity *CachedSimilarityService
	configPath string
}

// NewDependencies constructs the dependency set with sane defaults.
// configPath may be empty to trigger .setsim.toml discovery per dataset.
func NewDependencies(configPath string, cacheSize int) (*Dependencies, error) {
	similarity, err := NewCachedSimilarityService(cacheSize)
	if err != nil {
		return nil, err
	}
	return &Dependencies{
		reader:     service.NewDatasetReader(),
		similarity: similarity,
		configPath: configPath,
	}, nil
}

// ConfigPath returns the configured config file path (may be empty to trigger discovery).
func (d *Dependencies) ConfigPath() string {
	return d.configPath
}

// Similarity exposes the matrix-caching similarity service.
func (d *Dependencies) Similarity() *CachedSimilarityService {
	return d.similarity
}

// BuildSimilarityUseCase assembles a SimilarityUseCase over the shared cache.
// explicit names the request fields supplied by the tool call.
func (d *Dependencies) BuildSimilarityUseCase(explicit map[string]bool) (*app.SimilarityUseCase, error) {
	return app.NewSimilarityUseCaseBuilder().
		WithService(d.similarity).
		WithDatasetReader(d.reader).
		WithFormatter(service.NewSimilarityFormatter()).
		WithConfigLoader(service.NewSimilarityConfigurationLoader().WithExplicitFlags(explicit)).
		Build()
}

// ResolveRequest layers the explicit fields of req over the configuration
// discovered for its dataset and validates the result.
func (d *Dependencies) ResolveRequest(req domain.SimilarityRequest, explicit map[string]bool) (domain.SimilarityRequest, error) {
	loader := service.NewSimilarityConfigurationLoader().WithExplicitFlags(explicit)
	base, err := loader.LoadSimilarityConfig(req.ConfigPath, app.ConfigSearchDir(req.DatasetPath))
	if err != nil {
		return req, err
	}
	merged := *loader.MergeConfig(base, &req)
	if err := merged.Validate(); err != nil {
		return req, err
	}
	return merged, nil
}

// ReadDataset loads the dataset named by req
func (d *Dependencies) ReadDataset(req domain.SimilarityRequest) (*domain.Dataset, error) {
	return d.reader.ReadDataset(req.DatasetPath, req.DatasetOptions())
}
