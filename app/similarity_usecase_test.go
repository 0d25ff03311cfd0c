package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/setsim/domain"
	"github.com/ludo-technologies/setsim/service"
)

// Mock implementations
type mockSimilarityService struct {
	mock.Mock
}

func (m *mockSimilarityService) ComputeSimilarities(ctx context.Context, dataset *domain.Dataset, req *domain.SimilarityRequest) (*domain.SimilarityResponse, error) {
	args := m.Called(ctx, dataset, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SimilarityResponse), args.Error(1)
}

type mockDatasetReader struct {
	mock.Mock
}

func (m *mockDatasetReader) ReadDataset(path string, opts domain.DatasetOptions) (*domain.Dataset, error) {
	args := m.Called(path, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dataset), args.Error(1)
}

type mockSimilarityFormatter struct {
	mock.Mock
}

func (m *mockSimilarityFormatter) FormatSimilarityResponse(response *domain.SimilarityResponse, format domain.OutputFormat, writer io.Writer) error {
	args := m.Called(response, format, writer)
	return args.Error(0)
}

func (m *mockSimilarityFormatter) FormatPlain(response *domain.SimilarityResponse, writer io.Writer) error {
	args := m.Called(response, writer)
	return args.Error(0)
}

func (m *mockSimilarityFormatter) FormatMatrix(response *domain.SimilarityResponse, writer io.Writer) error {
	args := m.Called(response, writer)
	return args.Error(0)
}

type mockReportWriter struct {
	called     bool
	lastPath   string
	lastFormat domain.OutputFormat
	err        error
}

func (mw *mockReportWriter) Write(writer io.Writer, outputPath string, format domain.OutputFormat, writeFunc func(io.Writer) error) error {
	mw.called = true
	mw.lastPath = outputPath
	mw.lastFormat = format
	var buf bytes.Buffer
	if err := writeFunc(&buf); err != nil {
		return err
	}
	return mw.err
}

func testDataset() *domain.Dataset {
	return domain.NewDataset(map[string][]int64{
		"A": {1, 2, 3},
		"B": {1, 2, 3},
		"C": {4, 5, 6},
	})
}

func testRequest() domain.SimilarityRequest {
	req := domain.DefaultSimilarityRequest()
	req.DatasetPath = "sets.json"
	req.OutputWriter = &bytes.Buffer{}
	return *req
}

func testResponse() *domain.SimilarityResponse {
	return &domain.SimilarityResponse{
		Pairs:      []domain.SimilarPair{{Distance: 0, LabelA: "A", LabelB: "B", Similarity: 1, Intersections: 200}},
		Labels:     []string{"A", "B", "C"},
		Statistics: &domain.SimilarityStatistics{Labels: 3, PairsCompared: 3, PairsReported: 1},
		Success:    true,
	}
}

type useCaseMocks struct {
	service   *mockSimilarityService
	reader    *mockDatasetReader
	formatter *mockSimilarityFormatter
	output    *mockReportWriter
}

func setupSimilarityUseCase(t *testing.T) (*SimilarityUseCase, *useCaseMocks) {
	t.Helper()
	m := &useCaseMocks{
		service:   &mockSimilarityService{},
		reader:    &mockDatasetReader{},
		formatter: &mockSimilarityFormatter{},
		output:    &mockReportWriter{},
	}
	uc, err := NewSimilarityUseCaseBuilder().
		WithService(m.service).
		WithDatasetReader(m.reader).
		WithFormatter(m.formatter).
		WithOutputWriter(m.output).
		Build()
	require.NoError(t, err)
	return uc, m
}

func TestSimilarityUseCase_Execute_Success(t *testing.T) {
	uc, m := setupSimilarityUseCase(t)
	ds := testDataset()
	resp := testResponse()

	m.reader.On("ReadDataset", "sets.json", mock.AnythingOfType("domain.DatasetOptions")).Return(ds, nil)
	m.service.On("ComputeSimilarities", mock.Anything, ds, mock.AnythingOfType("*domain.SimilarityRequest")).Return(resp, nil)
	m.formatter.On("FormatSimilarityResponse", resp, domain.OutputFormatText, mock.Anything).Return(nil)

	err := uc.Execute(context.Background(), testRequest())
	require.NoError(t, err)

	assert.True(t, m.output.called)
	assert.Equal(t, domain.OutputFormatText, m.output.lastFormat)
	m.reader.AssertExpectations(t)
	m.service.AssertExpectations(t)
	m.formatter.AssertExpectations(t)
}

func TestSimilarityUseCase_Execute_Plain(t *testing.T) {
	uc, m := setupSimilarityUseCase(t)
	ds := testDataset()
	resp := testResponse()

	m.reader.On("ReadDataset", "sets.json", mock.Anything).Return(ds, nil)
	m.service.On("ComputeSimilarities", mock.Anything, ds, mock.Anything).Return(resp, nil)
	m.formatter.On("FormatPlain", resp, mock.Anything).Return(nil)

	req := testRequest()
	req.Plain = true
	require.NoError(t, uc.Execute(context.Background(), req))

	m.formatter.AssertNotCalled(t, "FormatSimilarityResponse", mock.Anything, mock.Anything, mock.Anything)
	m.formatter.AssertExpectations(t)
}

func TestSimilarityUseCase_DumpMatrix(t *testing.T) {
	uc, m := setupSimilarityUseCase(t)
	ds := testDataset()
	resp := testResponse()
	resp.Matrix = [][]uint64{{1}, {1}, {2}}

	m.reader.On("ReadDataset", "sets.json", mock.Anything).Return(ds, nil)
	m.service.On("ComputeSimilarities", mock.Anything, ds, mock.MatchedBy(func(r *domain.SimilarityRequest) bool {
		return r.ShowMatrix && !r.Exact
	})).Return(resp, nil)
	m.formatter.On("FormatMatrix", resp, mock.Anything).Return(nil)

	req := testRequest()
	req.Exact = true
	require.NoError(t, uc.DumpMatrix(context.Background(), req))

	m.service.AssertExpectations(t)
	m.formatter.AssertExpectations(t)
}

func TestSimilarityUseCase_ExecuteAndReturn(t *testing.T) {
	uc, m := setupSimilarityUseCase(t)
	ds := testDataset()
	resp := testResponse()

	m.reader.On("ReadDataset", "sets.json", mock.Anything).Return(ds, nil)
	m.service.On("ComputeSimilarities", mock.Anything, ds, mock.Anything).Return(resp, nil)

	// no writer is needed when the response is returned
	req := testRequest()
	req.OutputWriter = nil

	got, err := uc.ExecuteAndReturn(context.Background(), req)
	require.NoError(t, err)
	assert.Same(t, resp, got)
	assert.False(t, m.output.called)
}

func TestSimilarityUseCase_Execute_Errors(t *testing.T) {
	t.Run("invalid request", func(t *testing.T) {
		uc, m := setupSimilarityUseCase(t)
		req := testRequest()
		req.DatasetPath = ""

		err := uc.Execute(context.Background(), req)
		require.Error(t, err)
		assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidInput))
		m.reader.AssertNotCalled(t, "ReadDataset", mock.Anything, mock.Anything)
	})

	t.Run("invalid total hashes", func(t *testing.T) {
		uc, _ := setupSimilarityUseCase(t)
		req := testRequest()
		req.TotalHashes = 0

		err := uc.Execute(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrInvalidTotalHashes)
	})

	t.Run("missing writer", func(t *testing.T) {
		uc, _ := setupSimilarityUseCase(t)
		req := testRequest()
		req.OutputWriter = nil

		err := uc.Execute(context.Background(), req)
		assert.True(t, domain.IsCode(err, domain.ErrCodeInvalidInput))
	})

	t.Run("reader error", func(t *testing.T) {
		uc, m := setupSimilarityUseCase(t)
		m.reader.On("ReadDataset", "sets.json", mock.Anything).
			Return(nil, domain.NewFileNotFoundError("sets.json", errors.New("missing")))

		err := uc.Execute(context.Background(), testRequest())
		assert.True(t, domain.IsCode(err, domain.ErrCodeFileNotFound))
		m.service.AssertNotCalled(t, "ComputeSimilarities", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("service error", func(t *testing.T) {
		uc, m := setupSimilarityUseCase(t)
		m.reader.On("ReadDataset", "sets.json", mock.Anything).Return(testDataset(), nil)
		m.service.On("ComputeSimilarities", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		err := uc.Execute(context.Background(), testRequest())
		assert.True(t, domain.IsCode(err, domain.ErrCodeAnalysisError))
	})

	t.Run("report writer error", func(t *testing.T) {
		uc, m := setupSimilarityUseCase(t)
		m.output.err = errors.New("disk full")
		m.reader.On("ReadDataset", "sets.json", mock.Anything).Return(testDataset(), nil)
		m.service.On("ComputeSimilarities", mock.Anything, mock.Anything, mock.Anything).Return(testResponse(), nil)
		m.formatter.On("FormatSimilarityResponse", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		err := uc.Execute(context.Background(), testRequest())
		assert.True(t, domain.IsCode(err, domain.ErrCodeOutputError))
	})
}

func TestSimilarityUseCase_ConfigMerge(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/cfg/.setsim.toml", []byte(`
[minhash]
total_hashes = 32

[similarity]
threshold = 0.5
`), 0o644))

	loader := service.NewSimilarityConfigurationLoaderWithFs(fs).
		WithExplicitFlags(map[string]bool{service.FlagThreshold: true})

	m := &useCaseMocks{
		service:   &mockSimilarityService{},
		reader:    &mockDatasetReader{},
		formatter: &mockSimilarityFormatter{},
		output:    &mockReportWriter{},
	}
	uc, err := NewSimilarityUseCaseBuilder().
		WithService(m.service).
		WithDatasetReader(m.reader).
		WithFormatter(m.formatter).
		WithConfigLoader(loader).
		WithOutputWriter(m.output).
		Build()
	require.NoError(t, err)

	ds := testDataset()
	m.reader.On("ReadDataset", "sets.json", mock.Anything).Return(ds, nil)
	m.service.On("ComputeSimilarities", mock.Anything, ds, mock.MatchedBy(func(r *domain.SimilarityRequest) bool {
		// total_hashes from the file, threshold from the explicit flag
		return r.TotalHashes == 32 && r.Threshold == 0.1
	})).Return(testResponse(), nil)
	m.formatter.On("FormatSimilarityResponse", mock.Anything, domain.OutputFormatText, mock.Anything).Return(nil)

	req := testRequest()
	req.ConfigPath = "/cfg/.setsim.toml"
	req.Threshold = 0.1
	require.NoError(t, uc.Execute(context.Background(), req))
	m.service.AssertExpectations(t)
}

func TestSimilarityUseCaseBuilder_MissingDependencies(t *testing.T) {
	_, err := NewSimilarityUseCaseBuilder().Build()
	assert.Error(t, err)

	_, err = NewSimilarityUseCaseBuilder().WithService(&mockSimilarityService{}).Build()
	assert.Error(t, err)

	_, err = NewSimilarityUseCaseBuilder().
		WithService(&mockSimilarityService{}).
		WithDatasetReader(&mockDatasetReader{}).
		Build()
	assert.Error(t, err)
}
