package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gocarina/gocsv"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/setsim/domain"
)

// DatasetReaderImpl implements the DatasetReader interface
type DatasetReaderImpl struct {
	fs afero.Fs
}

// NewDatasetReader creates a dataset reader on the OS filesystem
func NewDatasetReader() *DatasetReaderImpl {
	return &DatasetReaderImpl{fs: afero.NewOsFs()}
}

// NewDatasetReaderWithFs creates a dataset reader on fs
func NewDatasetReaderWithFs(fs afero.Fs) *DatasetReaderImpl {
	return &DatasetReaderImpl{fs: fs}
}

// ReadDataset loads the dataset at path
func (r *DatasetReaderImpl) ReadDataset(path string, opts domain.DatasetOptions) (*domain.Dataset, error) {
	info, err := r.fs.Stat(path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}

	format := opts.Format
	if format == "" || format == domain.DatasetFormatAuto {
		format, err = DetectDatasetFormat(path, info.IsDir())
		if err != nil {
			return nil, err
		}
	}

	log.Debug().Str("path", path).Str("format", string(format)).Msg("reading dataset")

	if format == domain.DatasetFormatDir {
		if !info.IsDir() {
			return nil, domain.NewInvalidInputError(fmt.Sprintf("%s is not a directory", path), nil)
		}
		return r.readDirectory(path, opts)
	}
	if info.IsDir() {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("%s is a directory, expected a %s file", path, format), nil)
	}

	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return nil, domain.NewFileNotFoundError(path, err)
	}

	ds, err := ParseDataset(data, format, opts.KeyOrder)
	if err != nil {
		return nil, domain.NewParseError(path, err)
	}
	return ds, nil
}

// DetectDatasetFormat picks the dataset format from the file extension
func DetectDatasetFormat(path string, isDir bool) (domain.DatasetFormat, error) {
	if isDir {
		return domain.DatasetFormatDir, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return domain.DatasetFormatJSON, nil
	case ".yaml", ".yml":
		return domain.DatasetFormatYAML, nil
	case ".toml":
		return domain.DatasetFormatTOML, nil
	case ".csv":
		return domain.DatasetFormatCSV, nil
	default:
		return "", domain.NewUnsupportedFormatError(filepath.Ext(path))
	}
}

// ParseDataset decodes an in-memory dataset document
func ParseDataset(data []byte, format domain.DatasetFormat, order domain.KeyOrder) (*domain.Dataset, error) {
	switch format {
	case domain.DatasetFormatJSON:
		return parseJSONDataset(data, order)
	case domain.DatasetFormatYAML:
		return parseYAMLDataset(data, order)
	case domain.DatasetFormatTOML:
		return parseTOMLDataset(data, order)
	case domain.DatasetFormatCSV:
		return parseCSVDataset(data, order)
	default:
		return nil, domain.NewUnsupportedFormatError(string(format))
	}
}

// parseJSONDataset walks the top-level object token by token so the
// insertion order of labels is kept.
func parseJSONDataset(data []byte, order domain.KeyOrder) (*domain.Dataset, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected a JSON object of label to elements, got %v", tok)
	}

	builder := domain.NewDatasetBuilder()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		label := tok.(string)
		if builder.Has(label) {
			return nil, fmt.Errorf("duplicate label %q", label)
		}

		var elems []int64
		if err := dec.Decode(&elems); err != nil {
			return nil, fmt.Errorf("label %q: %w", label, err)
		}
		builder.Add(label, elems...)
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after the dataset object")
	}
	return builder.Build(order), nil
}

func parseYAMLDataset(data []byte, order domain.KeyOrder) (*domain.Dataset, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	builder := domain.NewDatasetBuilder()
	if doc.Kind == 0 {
		return builder.Build(order), nil
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: expected a mapping of label to elements", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		label := key.Value
		if builder.Has(label) {
			return nil, fmt.Errorf("line %d: duplicate label %q", key.Line, label)
		}

		var elems []int64
		if err := value.Decode(&elems); err != nil {
			return nil, fmt.Errorf("line %d: label %q: %w", value.Line, label, err)
		}
		builder.Add(label, elems...)
	}
	return builder.Build(order), nil
}

// parseTOMLDataset decodes a TOML table. TOML tables carry no usable key
// order, so labels are always sorted.
func parseTOMLDataset(data []byte, order domain.KeyOrder) (*domain.Dataset, error) {
	sets := make(map[string][]int64)
	if err := toml.Unmarshal(data, &sets); err != nil {
		return nil, err
	}
	if order == domain.KeyOrderInsertion {
		log.Warn().Msg("TOML datasets have no insertion order, labels are sorted")
	}
	return domain.NewDataset(sets), nil
}

// csvRow is one "label,element" record. An empty element declares the label
// without adding to it.
type csvRow struct {
	Label   string `csv:"label"`
	Element string `csv:"element"`
}

func parseCSVDataset(data []byte, order domain.KeyOrder) (*domain.Dataset, error) {
	var rows []*csvRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return domain.NewDatasetBuilder().Build(order), nil
		}
		return nil, err
	}

	builder := domain.NewDatasetBuilder()
	for i, row := range rows {
		label := strings.TrimSpace(row.Label)
		if label == "" {
			return nil, fmt.Errorf("row %d: empty label", i+2)
		}
		element := strings.TrimSpace(row.Element)
		if element == "" {
			builder.Declare(label)
			continue
		}
		v, err := strconv.ParseInt(element, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: element %q is not an integer", i+2, element)
		}
		builder.Add(label, v)
	}
	return builder.Build(order), nil
}

// readDirectory turns every matching file under root into one labeled set.
// Labels are slash-separated paths relative to root.
func (r *DatasetReaderImpl) readDirectory(root string, opts domain.DatasetOptions) (*domain.Dataset, error) {
	builder := domain.NewDatasetBuilder()

	walkFunc := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("skipping unreadable path")
			return nil
		}

		if path != root && strings.HasPrefix(info.Name(), ".") {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !shouldIncludeFile(rel, opts.IncludePatterns, opts.ExcludePatterns) {
			return nil
		}

		content, err := afero.ReadFile(r.fs, path)
		if err != nil {
			return domain.NewFileNotFoundError(path, err)
		}
		elems, err := parseElements(content)
		if err != nil {
			return domain.NewParseError(path, err)
		}
		builder.Add(rel, elems...)
		return nil
	}

	if err := afero.Walk(r.fs, root, walkFunc); err != nil {
		return nil, err
	}

	ds := builder.Build(opts.KeyOrder)
	if ds.Len() == 0 {
		return nil, domain.NewInvalidInputError(fmt.Sprintf("no dataset files in %s match %v", root, opts.IncludePatterns), nil)
	}
	return ds, nil
}

// shouldIncludeFile checks a slash-separated relative path against doublestar patterns
func shouldIncludeFile(rel string, includePatterns, excludePatterns []string) bool {
	base := filepath.Base(rel)
	for _, pattern := range excludePatterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return false
		}
		if matched, _ := doublestar.Match(pattern, base); matched {
			return false
		}
	}

	if len(includePatterns) == 0 {
		return true
	}

	for _, pattern := range includePatterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

// parseElements reads whitespace-separated integers
func parseElements(content []byte) ([]int64, error) {
	fields := strings.Fields(string(content))
	elems := make([]int64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("element %q is not an integer", f)
		}
		elems = append(elems, v)
	}
	return elems, nil
}
