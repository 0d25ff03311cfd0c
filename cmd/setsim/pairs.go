package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/setsim/app"
	"github.com/ludo-technologies/setsim/domain"
	"github.com/ludo-technologies/setsim/service"
)

// PairsCommand represents the similar pairs command
type PairsCommand struct {
	datasetFlags

	threshold  float64
	exact      bool
	showMatrix bool
	plain      bool
	noProgress bool

	// Output format flags (only one should be true)
	json      bool
	yaml      bool
	csv       bool
	output    string
	outputDir string
}

// NewPairsCommand creates a new pairs command
func NewPairsCommand() *PairsCommand {
	return &PairsCommand{}
}

// CreateCobraCommand creates the cobra command for similar pair enumeration
func (c *PairsCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pairs <dataset>",
		Short: "Report pairs of sets with similar elements",
		Long: `Build MinHash signatures for every labeled set of the dataset and print
each pair whose estimated distance (1 - similarity) is at most --threshold.

Each pair is printed as "<distance> ;- <label> ;- <label>", in row order.

Examples:
  # Pairs at distance 0.2 or less, 200 hashes
  setsim pairs sets.json

  # Only the pair lines, everything within 0.5
  setsim pairs --plain -t 0.5 sets.yaml

  # Directory dataset, 1000 hashes on every CPU, JSON report
  setsim pairs -n 1000 -w 0 --include '**/*.set' --json data/

  # Compare estimates against exact Jaccard similarity
  setsim pairs --exact sets.csv`,
		Args: cobra.ExactArgs(1),
		RunE: c.run,
	}

	c.datasetFlags.register(cmd)
	cmd.Flags().Float64VarP(&c.threshold, service.FlagThreshold, "t", domain.DefaultThreshold, "Maximum estimated distance of a reported pair")
	cmd.Flags().BoolVar(&c.exact, service.FlagExact, false, "Add an accuracy report against exact Jaccard similarity")
	cmd.Flags().BoolVar(&c.showMatrix, service.FlagShowMatrix, false, "Append the signature matrix to the text report")
	cmd.Flags().BoolVar(&c.plain, "plain", false, "Print only the pair lines")
	cmd.Flags().BoolVar(&c.noProgress, "no-progress", false, "Disable the progress bar")

	cmd.Flags().BoolVar(&c.json, "json", false, "Generate JSON report file")
	cmd.Flags().BoolVar(&c.yaml, "yaml", false, "Generate YAML report file")
	cmd.Flags().BoolVar(&c.csv, "csv", false, "Generate CSV report file (pairs)")
	cmd.Flags().StringVarP(&c.output, "output", "o", "", "Report file path (default: timestamped file in the output directory)")
	cmd.Flags().StringVar(&c.outputDir, service.FlagOutputDir, "", "Directory for generated report files")

	return cmd
}

func (c *PairsCommand) run(cmd *cobra.Command, args []string) error {
	req, explicit, err := c.buildRequest(cmd, args[0])
	if err != nil {
		return err
	}

	useCase, err := c.createUseCase(cmd, explicit)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return useCase.Execute(ctx, req)
}

// buildRequest turns the flags into a request and reports which fields were set explicitly
func (c *PairsCommand) buildRequest(cmd *cobra.Command, datasetPath string) (domain.SimilarityRequest, map[string]bool, error) {
	explicit := GetExplicitFlags(cmd)

	req := c.datasetFlags.request(datasetPath)
	req.Threshold = c.threshold
	req.Exact = c.exact
	req.ShowMatrix = c.showMatrix
	req.Plain = c.plain
	req.OutputDirectory = c.outputDir
	req.OutputWriter = cmd.OutOrStdout()

	format, ext, err := service.NewOutputFormatResolver().Determine(c.json, c.csv, c.yaml)
	if err != nil {
		return req, nil, err
	}
	if format != domain.OutputFormatText {
		req.OutputFormat = format
		explicit[service.FlagOutputFormat] = true

		req.OutputPath = c.output
		if req.OutputPath == "" {
			req.OutputPath, err = generateOutputFilePath("pairs", ext, c.outputDir, c.configFile, datasetPath)
			if err != nil {
				return req, nil, err
			}
		}
	} else if c.output != "" {
		req.OutputPath = c.output
	}

	return req, explicit, nil
}

// createUseCase wires the similarity use case for the CLI
func (c *PairsCommand) createUseCase(cmd *cobra.Command, explicit map[string]bool) (*app.SimilarityUseCase, error) {
	return buildUseCase(cmd.ErrOrStderr(), explicit, !c.noProgress && !globals.quiet)
}

// buildUseCase wires the use case shared by pairs and matrix
func buildUseCase(status io.Writer, explicit map[string]bool, progress bool) (*app.SimilarityUseCase, error) {
	var pm domain.ProgressManager
	if progress {
		pm = service.NewProgressManager()
		pm.SetWriter(status)
	}

	return app.NewSimilarityUseCaseBuilder().
		WithService(service.NewSimilarityService(pm)).
		WithDatasetReader(service.NewDatasetReader()).
		WithFormatter(service.NewSimilarityFormatter()).
		WithConfigLoader(service.NewSimilarityConfigurationLoader().WithExplicitFlags(explicit)).
		WithOutputWriter(service.NewFileOutputWriter(status)).
		Build()
}

// NewPairsCmd creates and returns the pairs cobra command
func NewPairsCmd() *cobra.Command {
	return NewPairsCommand().CreateCobraCommand()
}
