package service

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/ludo-technologies/setsim/domain"
)

// FileOutputWriter writes reports to files or provided writers.
type FileOutputWriter struct {
	fs     afero.Fs
	status io.Writer // where to print status messages (typically stderr)
}

// NewFileOutputWriter creates a new FileOutputWriter on the OS filesystem.
func NewFileOutputWriter(status io.Writer) *FileOutputWriter {
	return NewFileOutputWriterWithFs(afero.NewOsFs(), status)
}

// NewFileOutputWriterWithFs creates a FileOutputWriter writing report files to fs.
func NewFileOutputWriterWithFs(fs afero.Fs, status io.Writer) *FileOutputWriter {
	if status == nil {
		status = os.Stderr
	}
	return &FileOutputWriter{fs: fs, status: status}
}

// Write implements domain.ReportWriter.
func (w *FileOutputWriter) Write(writer io.Writer, outputPath string, format domain.OutputFormat, writeFunc func(io.Writer) error) error {
	if outputPath == "" {
		if err := writeFunc(writer); err != nil {
			return domain.NewOutputError("failed to write output", err)
		}
		return nil
	}

	if dir := filepath.Dir(outputPath); dir != "." {
		if err := w.fs.MkdirAll(dir, 0o755); err != nil {
			return domain.NewOutputError(fmt.Sprintf("failed to create output directory: %s", dir), err)
		}
	}

	file, err := w.fs.Create(outputPath)
	if err != nil {
		return domain.NewOutputError(fmt.Sprintf("failed to create output file: %s", outputPath), err)
	}
	defer file.Close()

	if err := writeFunc(file); err != nil {
		return domain.NewOutputError("failed to write output", err)
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		absPath = outputPath
	}
	formatName := strings.ToUpper(string(format))
	fmt.Fprintf(w.status, "%s report generated: %s\n", formatName, absPath)

	return nil
}
