package main

import (
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/setsim/domain"
	"github.com/ludo-technologies/setsim/service"
)

// datasetFlags are the signature and dataset flags shared by pairs and matrix
type datasetFlags struct {
	totalHashes int
	hashFamily  string
	workers     int
	emptySets   string
	inputFormat string
	keyOrder    string
	include     []string
	exclude     []string
	configFile  string
}

func (f *datasetFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.totalHashes, service.FlagTotalHashes, "n", domain.DefaultTotalHashes, "Number of hash functions (signature length)")
	cmd.Flags().StringVar(&f.hashFamily, service.FlagHashFamily, domain.DefaultHashFamily, "Hash family: xxhash, splitmix or universal")
	cmd.Flags().IntVarP(&f.workers, service.FlagWorkers, "w", domain.DefaultWorkers, "Rows built concurrently (0 = one per CPU)")
	cmd.Flags().StringVar(&f.emptySets, service.FlagEmptySets, string(domain.DefaultEmptySetPolicy), "Empty set policy: exclude or sentinel")
	cmd.Flags().StringVar(&f.inputFormat, service.FlagInputFormat, string(domain.DatasetFormatAuto), "Dataset format: auto, json, yaml, toml, csv or dir")
	cmd.Flags().StringVar(&f.keyOrder, service.FlagKeyOrder, string(domain.DefaultKeyOrder), "Row order: sorted or insertion")
	cmd.Flags().StringSliceVar(&f.include, service.FlagInclude, nil, "Include patterns for directory datasets")
	cmd.Flags().StringSliceVar(&f.exclude, service.FlagExclude, nil, "Exclude patterns for directory datasets")
	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Configuration file path (.setsim.toml)")
}

// request builds the base request for datasetPath from the flag values
func (f *datasetFlags) request(datasetPath string) domain.SimilarityRequest {
	return domain.SimilarityRequest{
		DatasetPath:     datasetPath,
		InputFormat:     domain.DatasetFormat(f.inputFormat),
		KeyOrder:        domain.KeyOrder(f.keyOrder),
		IncludePatterns: f.include,
		ExcludePatterns: f.exclude,
		TotalHashes:     f.totalHashes,
		HashFamily:      f.hashFamily,
		Workers:         f.workers,
		EmptySetPolicy:  domain.EmptySetPolicy(f.emptySets),
		OutputFormat:    domain.OutputFormatText,
		ConfigPath:      f.configFile,
	}
}
