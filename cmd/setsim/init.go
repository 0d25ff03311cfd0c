package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ludo-technologies/setsim/internal/config"
)

// InitCommand represents the init command
type InitCommand struct {
	fs         afero.Fs
	force      bool
	minimal    bool
	configPath string
}

// NewInitCommand creates a new init command
func NewInitCommand() *InitCommand {
	return &InitCommand{
		fs:         afero.NewOsFs(),
		configPath: config.ConfigFileName,
	}
}

// CreateCobraCommand creates the cobra command for configuration initialization
func (i *InitCommand) CreateCobraCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize setsim configuration file",
		Long: `Create a .setsim.toml file with every setting and its default value.

setsim looks for .setsim.toml in the dataset directory and its parents.
SETSIM_* environment variables override the file, and explicit flags
override both.

Examples:
  # Create .setsim.toml in current directory
  setsim init

  # Overwrite existing configuration file
  setsim init --force

  # Write only the keys and values, without comments
  setsim init --minimal`,
		Args: cobra.NoArgs,
		RunE: i.runInit,
	}

	cmd.Flags().BoolVarP(&i.force, "force", "f", false, "Overwrite existing configuration file")
	cmd.Flags().BoolVar(&i.minimal, "minimal", false, "Write the default values without comments")
	cmd.Flags().StringVarP(&i.configPath, "config", "c", config.ConfigFileName, "Configuration file path")

	return cmd
}

// runInit executes the init command
func (i *InitCommand) runInit(cmd *cobra.Command, args []string) error {
	configPath, err := filepath.Abs(i.configPath)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}

	exists, err := afero.Exists(i.fs, configPath)
	if err != nil {
		return fmt.Errorf("failed to check %s: %w", configPath, err)
	}
	if exists && !i.force {
		return fmt.Errorf("configuration file already exists: %s\nUse --force to overwrite", configPath)
	}

	configDir := filepath.Dir(configPath)
	if err := i.fs.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", configDir, err)
	}

	if i.minimal {
		if err := config.SaveConfig(i.fs, config.DefaultConfig(), configPath); err != nil {
			return err
		}
	} else if err := afero.WriteFile(i.fs, configPath, []byte(config.DefaultConfigTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	relPath, err := filepath.Rel(".", configPath)
	if err != nil {
		relPath = configPath
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Configuration file created: %s\n", relPath)
	fmt.Fprintf(out, "\nTo customize setsim:\n")
	fmt.Fprintf(out, "  1. Edit %s\n", relPath)
	fmt.Fprintf(out, "  2. Run 'setsim pairs <dataset>' from this directory or below\n")

	return nil
}

// NewInitCmd creates and returns the init cobra command
func NewInitCmd() *cobra.Command {
	return NewInitCommand().CreateCobraCommand()
}
