package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/ludo-technologies/setsim/domain"
	svc "github.com/ludo-technologies/setsim/service"
)

// SimilarityUseCase orchestrates loading a dataset, building its signatures
// and reporting the similar pairs
type SimilarityUseCase struct {
	service      domain.SimilarityService
	reader       domain.DatasetReader
	formatter    domain.SimilarityOutputFormatter
	configLoader domain.SimilarityConfigurationLoader
	output       domain.ReportWriter
}

// NewSimilarityUseCase creates a new similarity use case
func NewSimilarityUseCase(
	service domain.SimilarityService,
	reader domain.DatasetReader,
	formatter domain.SimilarityOutputFormatter,
	configLoader domain.SimilarityConfigurationLoader,
) *SimilarityUseCase {
	return &SimilarityUseCase{
		service:      service,
		reader:       reader,
		formatter:    formatter,
		configLoader: configLoader,
		output:       svc.NewFileOutputWriter(nil),
	}
}

// Execute runs the similarity workflow and writes the report
func (uc *SimilarityUseCase) Execute(ctx context.Context, req domain.SimilarityRequest) error {
	response, finalReq, err := uc.run(ctx, req, true, nil)
	if err != nil {
		return err
	}

	return uc.write(finalReq, func(w io.Writer) error {
		if finalReq.Plain {
			return uc.formatter.FormatPlain(response, w)
		}
		return uc.formatter.FormatSimilarityResponse(response, finalReq.OutputFormat, w)
	})
}

// ExecuteAndReturn runs the similarity workflow and returns the response without formatting
func (uc *SimilarityUseCase) ExecuteAndReturn(ctx context.Context, req domain.SimilarityRequest) (*domain.SimilarityResponse, error) {
	response, _, err := uc.run(ctx, req, false, nil)
	return response, err
}

// DumpMatrix builds the signature matrix and writes its debug dump
func (uc *SimilarityUseCase) DumpMatrix(ctx context.Context, req domain.SimilarityRequest) error {
	response, finalReq, err := uc.run(ctx, req, true, func(r *domain.SimilarityRequest) {
		r.ShowMatrix = true
		r.Exact = false
	})
	if err != nil {
		return err
	}

	return uc.write(finalReq, func(w io.Writer) error {
		return uc.formatter.FormatMatrix(response, w)
	})
}

// run resolves the request, loads the dataset and computes the response.
// adjust, if set, is applied to the merged request.
func (uc *SimilarityUseCase) run(ctx context.Context, req domain.SimilarityRequest, withOutput bool, adjust func(*domain.SimilarityRequest)) (*domain.SimilarityResponse, domain.SimilarityRequest, error) {
	finalReq, err := uc.loadAndMergeConfig(req)
	if err != nil {
		return nil, req, err
	}
	if adjust != nil {
		adjust(&finalReq)
	}

	if err := finalReq.Validate(); err != nil {
		return nil, req, err
	}
	if withOutput {
		if err := uc.validateOutput(finalReq); err != nil {
			return nil, req, domain.NewInvalidInputError("invalid request", err)
		}
	}

	dataset, err := uc.reader.ReadDataset(finalReq.DatasetPath, finalReq.DatasetOptions())
	if err != nil {
		return nil, req, err
	}
	log.Info().
		Str("dataset", finalReq.DatasetPath).
		Int("labels", dataset.Len()).
		Int("elements", dataset.TotalElements()).
		Msg("dataset loaded")

	response, err := uc.service.ComputeSimilarities(ctx, dataset, &finalReq)
	if err != nil {
		if domain.IsCode(err, domain.ErrCodeConfigError) || ctx.Err() != nil {
			return nil, req, err
		}
		return nil, req, domain.NewAnalysisError("similarity computation failed", err)
	}

	for _, label := range response.EmptyLabels {
		log.Warn().Str("label", label).Msg("empty set, signature is undefined")
	}

	return response, finalReq, nil
}

// write delegates output handling to the ReportWriter
func (uc *SimilarityUseCase) write(req domain.SimilarityRequest, writeFunc func(io.Writer) error) error {
	var out io.Writer
	if req.OutputPath == "" {
		out = req.OutputWriter
	}
	if err := uc.output.Write(out, req.OutputPath, req.OutputFormat, writeFunc); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}
	return nil
}

// validateOutput validates output configuration
func (uc *SimilarityUseCase) validateOutput(req domain.SimilarityRequest) error {
	if !req.HasValidOutputWriter() {
		return fmt.Errorf("output writer or output path is required")
	}

	switch req.OutputFormat {
	case domain.OutputFormatText, domain.OutputFormatJSON, domain.OutputFormatYAML, domain.OutputFormatCSV:
	default:
		return fmt.Errorf("unsupported output format: %s", req.OutputFormat)
	}
	return nil
}

// loadAndMergeConfig loads configuration for the dataset and merges the request on top of it
func (uc *SimilarityUseCase) loadAndMergeConfig(req domain.SimilarityRequest) (domain.SimilarityRequest, error) {
	if uc.configLoader == nil {
		return req, nil
	}

	configReq, err := uc.configLoader.LoadSimilarityConfig(req.ConfigPath, ConfigSearchDir(req.DatasetPath))
	if err != nil {
		return req, err
	}

	merged := uc.configLoader.MergeConfig(configReq, &req)
	return *merged, nil
}

// ConfigSearchDir is where .setsim.toml discovery starts for a dataset path
func ConfigSearchDir(datasetPath string) string {
	if datasetPath == "" {
		return "."
	}
	if info, err := os.Stat(datasetPath); err == nil && info.IsDir() {
		return datasetPath
	}
	return filepath.Dir(datasetPath)
}

// SimilarityUseCaseBuilder provides a builder pattern for creating SimilarityUseCase
type SimilarityUseCaseBuilder struct {
	service      domain.SimilarityService
	reader       domain.DatasetReader
	formatter    domain.SimilarityOutputFormatter
	configLoader domain.SimilarityConfigurationLoader
	output       domain.ReportWriter
}

// NewSimilarityUseCaseBuilder creates a new builder
func NewSimilarityUseCaseBuilder() *SimilarityUseCaseBuilder {
	return &SimilarityUseCaseBuilder{}
}

// WithService sets the similarity service
func (b *SimilarityUseCaseBuilder) WithService(service domain.SimilarityService) *SimilarityUseCaseBuilder {
	b.service = service
	return b
}

// WithDatasetReader sets the dataset reader
func (b *SimilarityUseCaseBuilder) WithDatasetReader(reader domain.DatasetReader) *SimilarityUseCaseBuilder {
	b.reader = reader
	return b
}

// WithFormatter sets the output formatter
func (b *SimilarityUseCaseBuilder) WithFormatter(formatter domain.SimilarityOutputFormatter) *SimilarityUseCaseBuilder {
	b.formatter = formatter
	return b
}

// WithConfigLoader sets the configuration loader
func (b *SimilarityUseCaseBuilder) WithConfigLoader(configLoader domain.SimilarityConfigurationLoader) *SimilarityUseCaseBuilder {
	b.configLoader = configLoader
	return b
}

// WithOutputWriter sets the report writer
func (b *SimilarityUseCaseBuilder) WithOutputWriter(output domain.ReportWriter) *SimilarityUseCaseBuilder {
	b.output = output
	return b
}

// Build creates the SimilarityUseCase with the configured dependencies
func (b *SimilarityUseCaseBuilder) Build() (*SimilarityUseCase, error) {
	if b.service == nil {
		return nil, fmt.Errorf("similarity service is required")
	}
	if b.reader == nil {
		return nil, fmt.Errorf("dataset reader is required")
	}
	if b.formatter == nil {
		return nil, fmt.Errorf("output formatter is required")
	}

	// the config loader is optional, without it the request is used as is
	uc := NewSimilarityUseCase(b.service, b.reader, b.formatter, b.configLoader)
	if b.output != nil {
		uc.output = b.output
	}
	return uc, nil
}
