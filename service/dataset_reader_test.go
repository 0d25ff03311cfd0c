package service

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/setsim/domain"
)

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func elems(t *testing.T, ds *domain.Dataset, label string) []int64 {
	t.Helper()
	e, ok := ds.Elements(label)
	require.True(t, ok, "label %q missing", label)
	return e
}

func TestDetectDatasetFormat(t *testing.T) {
	tests := []struct {
		path     string
		isDir    bool
		expected domain.DatasetFormat
	}{
		{"sets.json", false, domain.DatasetFormatJSON},
		{"sets.YAML", false, domain.DatasetFormatYAML},
		{"sets.yml", false, domain.DatasetFormatYAML},
		{"sets.toml", false, domain.DatasetFormatTOML},
		{"sets.csv", false, domain.DatasetFormatCSV},
		{"sets", true, domain.DatasetFormatDir},
	}
	for _, tt := range tests {
		got, err := DetectDatasetFormat(tt.path, tt.isDir)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, got, tt.path)
	}

	_, err := DetectDatasetFormat("sets.xml", false)
	assert.True(t, domain.IsCode(err, domain.ErrCodeUnsupportedFormat))
}

func TestReadDataset_JSONKeyOrder(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/d/sets.json": `{"zeta": [3, 1, 3], "alpha": [], "mid": [-7]}`,
	})
	reader := NewDatasetReaderWithFs(fs)

	sorted, err := reader.ReadDataset("/d/sets.json", domain.DatasetOptions{KeyOrder: domain.KeyOrderSorted})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, sorted.Labels())

	inserted, err := reader.ReadDataset("/d/sets.json", domain.DatasetOptions{KeyOrder: domain.KeyOrderInsertion})
	require.NoError(t, err)
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, inserted.Labels())

	assert.Equal(t, []int64{3, 1, 3}, elems(t, inserted, "zeta"))
	assert.Empty(t, elems(t, inserted, "alpha"))
	assert.Equal(t, []string{"alpha"}, inserted.EmptyLabels())
}

func TestParseDataset_JSONErrors(t *testing.T) {
	tests := map[string]string{
		"not an object":   `[1, 2]`,
		"float element":   `{"a": [1.5]}`,
		"duplicate label": `{"a": [1], "a": [2]}`,
		"trailing data":   `{"a": [1]} {}`,
		"empty":           ``,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseDataset([]byte(doc), domain.DatasetFormatJSON, domain.KeyOrderSorted)
			assert.Error(t, err)
		})
	}
}

func TestParseDataset_YAML(t *testing.T) {
	doc := `
b: [1, 2, 3]
a:
  - 4
  - 5
empty: []
none:
`
	ds, err := ParseDataset([]byte(doc), domain.DatasetFormatYAML, domain.KeyOrderInsertion)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "empty", "none"}, ds.Labels())
	assert.Equal(t, []int64{4, 5}, elems(t, ds, "a"))
	assert.ElementsMatch(t, []string{"empty", "none"}, ds.EmptyLabels())

	_, err = ParseDataset([]byte("- 1\n- 2\n"), domain.DatasetFormatYAML, domain.KeyOrderSorted)
	assert.Error(t, err)

	_, err = ParseDataset([]byte("a: [x]\n"), domain.DatasetFormatYAML, domain.KeyOrderSorted)
	assert.Error(t, err)

	empty, err := ParseDataset([]byte(""), domain.DatasetFormatYAML, domain.KeyOrderSorted)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())
}

func TestParseDataset_TOML(t *testing.T) {
	doc := `
zeta = [1, 2]
alpha = []
`
	ds, err := ParseDataset([]byte(doc), domain.DatasetFormatTOML, domain.KeyOrderInsertion)
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "zeta"}, ds.Labels(), "TOML labels are always sorted")
	assert.Equal(t, []int64{1, 2}, elems(t, ds, "zeta"))
}

func TestParseDataset_CSV(t *testing.T) {
	doc := "label,element\nb,1\na,2\nb,3\nempty,\na,-4\n"

	ds, err := ParseDataset([]byte(doc), domain.DatasetFormatCSV, domain.KeyOrderInsertion)
	require.NoError(t, err)

	assert.Equal(t, []string{"b", "a", "empty"}, ds.Labels())
	assert.Equal(t, []int64{1, 3}, elems(t, ds, "b"))
	assert.Equal(t, []int64{2, -4}, elems(t, ds, "a"))
	assert.Equal(t, []string{"empty"}, ds.EmptyLabels())

	_, err = ParseDataset([]byte("label,element\na,x\n"), domain.DatasetFormatCSV, domain.KeyOrderSorted)
	assert.ErrorContains(t, err, "row 2")

	_, err = ParseDataset([]byte("label,element\n,1\n"), domain.DatasetFormatCSV, domain.KeyOrderSorted)
	assert.ErrorContains(t, err, "empty label")
}

func TestReadDataset_Directory(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/corpus/a.txt":          "1 2 3\n4",
		"/corpus/sub/b.txt":      "3\t4 5",
		"/corpus/sub/empty.txt":  "",
		"/corpus/skip.dat":       "9",
		"/corpus/.hidden/c.txt":  "1",
		"/corpus/vendor/old.txt": "7",
	})
	reader := NewDatasetReaderWithFs(fs)

	ds, err := reader.ReadDataset("/corpus", domain.DatasetOptions{
		IncludePatterns: []string{"**/*.txt"},
		ExcludePatterns: []string{"vendor/**"},
		KeyOrder:        domain.KeyOrderSorted,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a.txt", "sub/b.txt", "sub/empty.txt"}, ds.Labels())
	assert.Equal(t, []int64{1, 2, 3, 4}, elems(t, ds, "a.txt"))
	assert.Equal(t, []int64{3, 4, 5}, elems(t, ds, "sub/b.txt"))
	assert.Equal(t, []string{"sub/empty.txt"}, ds.EmptyLabels())
}

func TestReadDataset_DirectoryErrors(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/bad/a.txt":   "1 two",
		"/none/a.json": "{}",
	})
	reader := NewDatasetReaderWithFs(fs)
	opts := domain.DatasetOptions{IncludePatterns: []string{"**/*.txt"}}

	_, err := reader.ReadDataset("/bad", opts)
	assert.True(t, domain.IsCode(err, domain.ErrCodeParseError))

	_, err = reader.ReadDataset("/none", opts)
	assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidInput))
}

func TestReadDataset_Errors(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/d/sets.json": `{"a": [1]`,
		"/d/sets.txt":  `1 2`,
	})
	reader := NewDatasetReaderWithFs(fs)

	_, err := reader.ReadDataset("/missing.json", domain.DatasetOptions{})
	assert.True(t, domain.IsCode(err, domain.ErrCodeFileNotFound))

	_, err = reader.ReadDataset("/d/sets.json", domain.DatasetOptions{})
	assert.True(t, domain.IsCode(err, domain.ErrCodeParseError))

	_, err = reader.ReadDataset("/d/sets.txt", domain.DatasetOptions{})
	assert.True(t, domain.IsCode(err, domain.ErrCodeUnsupportedFormat))

	_, err = reader.ReadDataset("/d", domain.DatasetOptions{Format: domain.DatasetFormatJSON})
	assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidInput))

	_, err = reader.ReadDataset("/d/sets.txt", domain.DatasetOptions{Format: domain.DatasetFormatDir})
	assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidInput))
}

func TestReadDataset_ExplicitFormatOverridesExtension(t *testing.T) {
	fs := memFs(t, map[string]string{"/d/sets.txt": `{"a": [1, 2]}`})

	ds, err := NewDatasetReaderWithFs(fs).ReadDataset("/d/sets.txt", domain.DatasetOptions{Format: domain.DatasetFormatJSON})
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, elems(t, ds, "a"))
}
