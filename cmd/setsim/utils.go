package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ludo-technologies/setsim/app"
	"github.com/ludo-technologies/setsim/service"
)

// generateTimestampedFileName generates a filename with timestamp suffix
func generateTimestampedFileName(command, extension string) string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("%s_%s.%s", command, timestamp, extension)
}

// resolveOutputDirectory picks the report directory: the flag value, then
// output.directory from the configuration, then .setsim/reports under the
// working directory
func resolveOutputDirectory(flagDir, configFile, datasetPath string) (string, error) {
	if flagDir != "" {
		return flagDir, nil
	}

	loader := service.NewSimilarityConfigurationLoader()
	cfg, err := loader.LoadSimilarityConfig(configFile, app.ConfigSearchDir(datasetPath))
	if err != nil {
		// Don't hide configuration errors - they should be visible to users
		return "", err
	}
	if cfg.OutputDirectory != "" {
		return cfg.OutputDirectory, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".setsim", "reports"), nil
	}
	return filepath.Join(cwd, ".setsim", "reports"), nil
}

// generateOutputFilePath returns a timestamped report path in the resolved output directory
func generateOutputFilePath(command, extension, flagDir, configFile, datasetPath string) (string, error) {
	outputDir, err := resolveOutputDirectory(flagDir, configFile, datasetPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(outputDir, generateTimestampedFileName(command, extension)), nil
}

// printError writes err with its category and recovery suggestions
func printError(w io.Writer, err error) {
	categorizer := service.NewErrorCategorizer()
	categorized := categorizer.Categorize(err)

	fmt.Fprintf(w, "Error: %v\n", err)
	suggestions := categorizer.GetRecoverySuggestions(categorized.Category)
	if len(suggestions) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s suggestions:\n", categorized.Category)
	for _, s := range suggestions {
		fmt.Fprintf(w, "  - %s\n", s)
	}
}
