package domain

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
)

// EmptySetPolicy decides how labels with no elements take part in similarity queries.
type EmptySetPolicy string

const (
	// EmptySetExclude flags empty sets and leaves them out of pair enumeration.
	EmptySetExclude EmptySetPolicy = "exclude"
	// EmptySetSentinel compares empty sets by their all-MaxUint64 rows.
	EmptySetSentinel EmptySetPolicy = "sentinel"
)

// DatasetFormat identifies how a dataset file is encoded
type DatasetFormat string

const (
	DatasetFormatAuto DatasetFormat = "auto"
	DatasetFormatJSON DatasetFormat = "json"
	DatasetFormatYAML DatasetFormat = "yaml"
	DatasetFormatTOML DatasetFormat = "toml"
	DatasetFormatCSV  DatasetFormat = "csv"
	DatasetFormatDir  DatasetFormat = "dir"
)

// SimilarPair is one unordered pair of distinct labels whose estimated
// distance is within the requested threshold.
type SimilarPair struct {
	Distance      float64 `json:"distance" yaml:"distance" csv:"distance"`
	LabelA        string  `json:"label_a" yaml:"label_a" csv:"label_a"`
	LabelB        string  `json:"label_b" yaml:"label_b" csv:"label_b"`
	Similarity    float64 `json:"similarity" yaml:"similarity" csv:"similarity"`
	Intersections int     `json:"intersections" yaml:"intersections" csv:"intersections"`
}

// String renders the pair in the "<distance> ;- <a> ;- <b>" line format
func (p SimilarPair) String() string {
	return FormatSimilarityLine(p.Distance, p.LabelA, p.LabelB)
}

// FormatSimilarityLine renders one similarity line.
func FormatSimilarityLine(distance float64, labelA, labelB string) string {
	return strconv.FormatFloat(distance, 'f', -1, 64) + " ;- " + labelA + " ;- " + labelB
}

// PairAccuracy compares the estimate for one pair against the exact Jaccard similarity
type PairAccuracy struct {
	LabelA    string  `json:"label_a" yaml:"label_a" csv:"label_a"`
	LabelB    string  `json:"label_b" yaml:"label_b" csv:"label_b"`
	Estimated float64 `json:"estimated" yaml:"estimated" csv:"estimated"`
	Exact     float64 `json:"exact" yaml:"exact" csv:"exact"`
	AbsError  float64 `json:"abs_error" yaml:"abs_error" csv:"abs_error"`
}

// AccuracyReport summarizes estimator error over the reported pairs
type AccuracyReport struct {
	Pairs          []PairAccuracy `json:"pairs" yaml:"pairs"`
	MeanAbsError   float64        `json:"mean_abs_error" yaml:"mean_abs_error"`
	StdDevAbsError float64        `json:"stddev_abs_error" yaml:"stddev_abs_error"`
	MaxAbsError    float64        `json:"max_abs_error" yaml:"max_abs_error"`
}

// SimilarityStatistics provides statistics about one similarity run
type SimilarityStatistics struct {
	Labels            int     `json:"labels" yaml:"labels"`
	EmptySets         int     `json:"empty_sets" yaml:"empty_sets"`
	TotalElements     int     `json:"total_elements" yaml:"total_elements"`
	PairsCompared     int     `json:"pairs_compared" yaml:"pairs_compared"`
	PairsReported     int     `json:"pairs_reported" yaml:"pairs_reported"`
	AverageSimilarity float64 `json:"average_similarity" yaml:"average_similarity"`
}

// SimilarityRequest represents a request for similar pair enumeration
type SimilarityRequest struct {
	// Input parameters
	DatasetPath     string        `json:"dataset_path"`
	InputFormat     DatasetFormat `json:"input_format"`
	KeyOrder        KeyOrder      `json:"key_order"`
	IncludePatterns []string      `json:"include_patterns"`
	ExcludePatterns []string      `json:"exclude_patterns"`

	// Signature configuration
	TotalHashes int    `json:"total_hashes"`
	HashFamily  string `json:"hash_family"`
	Workers     int    `json:"workers"`

	// Similarity configuration
	Threshold      float64        `json:"threshold"`
	EmptySetPolicy EmptySetPolicy `json:"empty_set_policy"`
	Exact          bool           `json:"exact"`

	// Output configuration
	OutputFormat    OutputFormat `json:"output_format"`
	OutputWriter    io.Writer    `json:"-"`
	OutputPath      string       `json:"output_path"`
	OutputDirectory string       `json:"output_directory"` // report directory when OutputPath is unset
	ShowMatrix      bool         `json:"show_matrix"`
	Plain           bool         `json:"plain"` // only the "<distance> ;- <a> ;- <b>" lines

	// Configuration file
	ConfigPath string `json:"config_path"`
}

// SimilarityResponse represents the result of a similarity run
type SimilarityResponse struct {
	Pairs       []SimilarPair         `json:"pairs" yaml:"pairs"`
	Labels      []string              `json:"labels" yaml:"labels"`
	EmptyLabels []string              `json:"empty_labels,omitempty" yaml:"empty_labels,omitempty"`
	Matrix      [][]uint64            `json:"matrix,omitempty" yaml:"matrix,omitempty"`
	Statistics  *SimilarityStatistics `json:"statistics" yaml:"statistics"`
	Accuracy    *AccuracyReport       `json:"accuracy,omitempty" yaml:"accuracy,omitempty"`

	// Metadata
	TotalHashes    int                `json:"total_hashes" yaml:"total_hashes"`
	HashFamily     string             `json:"hash_family" yaml:"hash_family"`
	Threshold      float64            `json:"threshold" yaml:"threshold"`
	EmptySetPolicy EmptySetPolicy     `json:"empty_set_policy" yaml:"empty_set_policy"`
	Request        *SimilarityRequest `json:"-" yaml:"-"`
	Duration       int64              `json:"duration_ms" yaml:"duration_ms"`
	Success        bool               `json:"success" yaml:"success"`
	Error          string             `json:"error,omitempty" yaml:"error,omitempty"`
}

// DatasetOptions controls how a dataset is read
type DatasetOptions struct {
	Format          DatasetFormat
	KeyOrder        KeyOrder
	IncludePatterns []string
	ExcludePatterns []string
}

// DatasetReader loads datasets from files or directories
type DatasetReader interface {
	// ReadDataset reads the dataset at path
	ReadDataset(path string, opts DatasetOptions) (*Dataset, error)
}

// SimilarityService defines the interface for similarity computation
type SimilarityService interface {
	// ComputeSimilarities builds signatures for the dataset and enumerates similar pairs
	ComputeSimilarities(ctx context.Context, dataset *Dataset, req *SimilarityRequest) (*SimilarityResponse, error)
}

// SimilarityOutputFormatter formats similarity results
type SimilarityOutputFormatter interface {
	// FormatSimilarityResponse writes the response in the requested format
	FormatSimilarityResponse(response *SimilarityResponse, format OutputFormat, writer io.Writer) error

	// FormatPlain writes one "<distance> ;- <a> ;- <b>" line per pair
	FormatPlain(response *SimilarityResponse, writer io.Writer) error

	// FormatMatrix writes the signature matrix dump
	FormatMatrix(response *SimilarityResponse, writer io.Writer) error
}

// SimilarityConfigurationLoader loads similarity configuration
type SimilarityConfigurationLoader interface {
	// LoadSimilarityConfig loads configuration from configPath, or discovers
	// .setsim.toml walking up from startDir when configPath is empty
	LoadSimilarityConfig(configPath, startDir string) (*SimilarityRequest, error)

	// GetDefaultSimilarityConfig returns the default configuration
	GetDefaultSimilarityConfig() *SimilarityRequest

	// MergeConfig merges override on top of base (override takes precedence)
	MergeConfig(base *SimilarityRequest, override *SimilarityRequest) *SimilarityRequest
}

// Validate validates a similarity request
func (req *SimilarityRequest) Validate() error {
	if req.DatasetPath == "" {
		return NewValidationError("dataset path cannot be empty")
	}

	if req.TotalHashes <= 0 {
		return NewInvalidTotalHashesError(req.TotalHashes)
	}

	if req.Threshold < 0.0 || req.Threshold > 1.0 {
		return NewValidationError("threshold must be between 0.0 and 1.0")
	}

	if req.Workers < 0 {
		return NewValidationError("workers must be >= 0")
	}

	if req.HashFamily != "" && !slices.Contains(HashFamilyNames, req.HashFamily) {
		return NewConfigError(fmt.Sprintf("hash family %q", req.HashFamily), ErrUnknownHashFamily)
	}

	switch req.EmptySetPolicy {
	case "", EmptySetExclude, EmptySetSentinel:
	default:
		return NewValidationError(fmt.Sprintf("unsupported empty set policy: %s", req.EmptySetPolicy))
	}

	switch req.KeyOrder {
	case "", KeyOrderSorted, KeyOrderInsertion:
	default:
		return NewValidationError(fmt.Sprintf("unsupported key order: %s", req.KeyOrder))
	}

	return nil
}

// HasValidOutputWriter checks if the request has a valid output writer
func (req *SimilarityRequest) HasValidOutputWriter() bool {
	return req.OutputWriter != nil || req.OutputPath != ""
}

// DatasetOptions extracts reader options from the request
func (req *SimilarityRequest) DatasetOptions() DatasetOptions {
	return DatasetOptions{
		Format:          req.InputFormat,
		KeyOrder:        req.KeyOrder,
		IncludePatterns: req.IncludePatterns,
		ExcludePatterns: req.ExcludePatterns,
	}
}

// DefaultSimilarityRequest returns a default similarity request
func DefaultSimilarityRequest() *SimilarityRequest {
	return &SimilarityRequest{
		InputFormat:     DatasetFormatAuto,
		KeyOrder:        DefaultKeyOrder,
		IncludePatterns: []string{"**/*.txt"},
		ExcludePatterns: []string{},
		TotalHashes:     DefaultTotalHashes,
		HashFamily:      DefaultHashFamily,
		Workers:         DefaultWorkers,
		Threshold:       DefaultThreshold,
		EmptySetPolicy:  DefaultEmptySetPolicy,
		OutputFormat:    OutputFormatText,
	}
}
