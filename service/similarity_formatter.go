package service

import (
	"fmt"
	"io"
	"strings"

	"github.com/ludo-technologies/setsim/domain"
	"github.com/ludo-technologies/setsim/internal/analyzer"
)

// SimilarityFormatter implements the SimilarityOutputFormatter interface
type SimilarityFormatter struct {
	utils *FormatUtils
}

// NewSimilarityFormatter creates a new similarity output formatter
func NewSimilarityFormatter() *SimilarityFormatter {
	return &SimilarityFormatter{utils: NewFormatUtils()}
}

// FormatSimilarityResponse formats a similarity response according to the specified format
func (f *SimilarityFormatter) FormatSimilarityResponse(response *domain.SimilarityResponse, format domain.OutputFormat, writer io.Writer) error {
	if response == nil {
		return domain.NewOutputError("response cannot be nil", nil)
	}

	switch format {
	case domain.OutputFormatText, "":
		return f.formatText(response, writer)
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatCSV:
		return WriteCSV(writer, response.Pairs)
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

// FormatPlain writes only the "<distance> ;- <a> ;- <b>" lines
func (f *SimilarityFormatter) FormatPlain(response *domain.SimilarityResponse, writer io.Writer) error {
	var builder strings.Builder
	for _, p := range response.Pairs {
		builder.WriteString(p.String())
		builder.WriteByte('\n')
	}
	_, err := io.WriteString(writer, builder.String())
	return err
}

// FormatMatrix writes the signature matrix debug dump, one row per line
func (f *SimilarityFormatter) FormatMatrix(response *domain.SimilarityResponse, writer io.Writer) error {
	if response == nil {
		return domain.NewOutputError("response cannot be nil", nil)
	}
	if err := analyzer.DumpRows(writer, response.Matrix); err != nil {
		return domain.NewOutputError("failed to write signature matrix", err)
	}
	return nil
}

func (f *SimilarityFormatter) formatText(response *domain.SimilarityResponse, writer io.Writer) error {
	var builder strings.Builder

	builder.WriteString(f.utils.FormatMainHeader(fmt.Sprintf(
		"Similar Pairs (distance <= %s, %d %s hashes)",
		formatFloat(response.Threshold), response.TotalHashes, response.HashFamily)))

	if len(response.Pairs) == 0 {
		builder.WriteString("No similar pairs found.\n\n")
	} else {
		for _, p := range response.Pairs {
			builder.WriteString(p.String())
			builder.WriteByte('\n')
		}
		builder.WriteString(f.utils.FormatSectionSeparator())
	}

	if stats := response.Statistics; stats != nil {
		builder.WriteString(f.utils.FormatSectionHeader("Summary"))
		builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Labels", stats.Labels))
		builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Empty sets", stats.EmptySets))
		builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Elements", stats.TotalElements))
		builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Pairs compared", stats.PairsCompared))
		builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Pairs reported", stats.PairsReported))
		if stats.PairsReported > 0 {
			builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Average similarity", f.utils.FormatPercentage(stats.AverageSimilarity)))
		}
		builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Empty set policy", response.EmptySetPolicy))
		builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Duration", f.utils.FormatDuration(response.Duration)))
		builder.WriteString(f.utils.FormatSectionSeparator())
	}

	if acc := response.Accuracy; acc != nil {
		builder.WriteString(f.utils.FormatSectionHeader("Accuracy"))
		builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Mean abs error", fmt.Sprintf("%.4f", acc.MeanAbsError)))
		builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Std dev abs error", fmt.Sprintf("%.4f", acc.StdDevAbsError)))
		builder.WriteString(f.utils.FormatLabelWithIndent(SectionPadding, "Max abs error", fmt.Sprintf("%.4f", acc.MaxAbsError)))
		for _, p := range acc.Pairs {
			builder.WriteString(fmt.Sprintf("    %s / %s: estimated %.4f, exact %.4f\n", p.LabelA, p.LabelB, p.Estimated, p.Exact))
		}
		builder.WriteString(f.utils.FormatSectionSeparator())
	}

	var warnings []string
	for _, label := range response.EmptyLabels {
		warnings = append(warnings, fmt.Sprintf("%s has no elements, its signature is undefined", label))
	}
	builder.WriteString(f.utils.FormatWarningsSection(warnings))

	if _, err := io.WriteString(writer, builder.String()); err != nil {
		return domain.NewOutputError("failed to write text output", err)
	}

	if len(response.Matrix) > 0 {
		header := f.utils.FormatSectionHeader("Signature Matrix") +
			"  rows: " + strings.Join(response.Labels, ", ") + "\n"
		if _, err := io.WriteString(writer, header); err != nil {
			return domain.NewOutputError("failed to write text output", err)
		}
		if err := analyzer.DumpRows(writer, response.Matrix); err != nil {
			return domain.NewOutputError("failed to write signature matrix", err)
		}
	}
	return nil
}

func formatFloat(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}
