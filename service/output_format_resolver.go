package service

import (
	"fmt"

	"github.com/ludo-technologies/setsim/domain"
)

// OutputFormatResolver resolves output format and file extension from flags.
type OutputFormatResolver struct{}

func NewOutputFormatResolver() *OutputFormatResolver { return &OutputFormatResolver{} }

// Determine evaluates format flags and returns the selected format and extension.
// At most one of json/csv/yaml may be true; if none are true, defaults to text.
func (r *OutputFormatResolver) Determine(json, csv, yaml bool) (domain.OutputFormat, string, error) {
	formatCount := 0
	var format domain.OutputFormat
	var ext string

	if json {
		formatCount++
		format = domain.OutputFormatJSON
		ext = "json"
	}
	if csv {
		formatCount++
		format = domain.OutputFormatCSV
		ext = "csv"
	}
	if yaml {
		formatCount++
		format = domain.OutputFormatYAML
		ext = "yaml"
	}

	if formatCount > 1 {
		return "", "", fmt.Errorf("only one output format flag can be specified")
	}
	if formatCount == 0 {
		return domain.OutputFormatText, "", nil
	}
	return format, ext, nil
}

// ParseOutputFormat converts a config value into an OutputFormat and its file extension
func ParseOutputFormat(name string) (domain.OutputFormat, string, error) {
	switch domain.OutputFormat(name) {
	case "", domain.OutputFormatText:
		return domain.OutputFormatText, "", nil
	case domain.OutputFormatJSON:
		return domain.OutputFormatJSON, "json", nil
	case domain.OutputFormatYAML:
		return domain.OutputFormatYAML, "yaml", nil
	case domain.OutputFormatCSV:
		return domain.OutputFormatCSV, "csv", nil
	default:
		return "", "", domain.NewUnsupportedFormatError(name)
	}
}
