package main

import (
	"context"

	"github.com/spf13/cobra"
)

// MatrixCommand represents the signature matrix dump command
type MatrixCommand struct {
	datasetFlags
	output string
}

// NewMatrixCommand creates a new matrix command
func NewMatrixCommand() *MatrixCommand {
	return &MatrixCommand{}
}

// CreateCobraCommand creates the cobra command for the matrix dump
func (c *MatrixCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matrix <dataset>",
		Short: "Dump the MinHash signature matrix",
		Long: `Build MinHash signatures for the dataset and print the signature matrix,
one row per label in row order. Each value is followed by " ; ".

Examples:
  setsim matrix -n 8 sets.json
  setsim matrix --key-order insertion -o matrix.txt sets.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: c.run,
	}

	c.datasetFlags.register(cmd)
	cmd.Flags().StringVarP(&c.output, "output", "o", "", "Write the dump to this file instead of stdout")
	return cmd
}

func (c *MatrixCommand) run(cmd *cobra.Command, args []string) error {
	req := c.datasetFlags.request(args[0])
	req.OutputWriter = cmd.OutOrStdout()
	req.OutputPath = c.output

	useCase, err := buildUseCase(cmd.ErrOrStderr(), GetExplicitFlags(cmd), false)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return useCase.DumpMatrix(ctx, req)
}

// NewMatrixCmd creates and returns the matrix cobra command
func NewMatrixCmd() *cobra.Command {
	return NewMatrixCommand().CreateCobraCommand()
}
