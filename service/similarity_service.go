package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/stat"

	"github.com/ludo-technologies/setsim/domain"
	"github.com/ludo-technologies/setsim/internal/analyzer"
)

// SimilarityServiceImpl implements the domain.SimilarityService interface
type SimilarityServiceImpl struct {
	progress domain.ProgressManager
}

// NewSimilarityService creates a new similarity service.
// progress can be nil - the service works without progress reporting.
func NewSimilarityService(progress domain.ProgressManager) *SimilarityServiceImpl {
	return &SimilarityServiceImpl{progress: progress}
}

// ComputeSimilarities builds the signature matrix of dataset and enumerates its similar pairs
func (s *SimilarityServiceImpl) ComputeSimilarities(ctx context.Context, dataset *domain.Dataset, req *domain.SimilarityRequest) (*domain.SimilarityResponse, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context cannot be nil")
	}
	if req == nil {
		return nil, fmt.Errorf("similarity request cannot be nil")
	}

	startTime := time.Now()

	mat, err := s.BuildMatrix(ctx, dataset, req)
	if err != nil {
		return nil, err
	}

	resp, err := s.ComputeFromMatrix(ctx, mat, req)
	if err != nil {
		return nil, err
	}
	resp.Duration = time.Since(startTime).Milliseconds()
	return resp, nil
}

// BuildMatrix constructs the signature matrix described by req
func (s *SimilarityServiceImpl) BuildMatrix(ctx context.Context, dataset *domain.Dataset, req *domain.SimilarityRequest) (*analyzer.SignatureMatrix, error) {
	family, err := analyzer.NewHashFamily(req.HashFamily, req.TotalHashes)
	if err != nil {
		return nil, err
	}

	opts := []analyzer.MinHasherOption{
		analyzer.WithWorkers(req.Workers),
		analyzer.WithEmptySetPolicy(req.EmptySetPolicy),
	}
	if s.progress != nil {
		s.progress.Initialize(dataset.Len())
		s.progress.Start()
		opts = append(opts, analyzer.WithProgress(s.progress.Update))
	}

	hasher, err := analyzer.NewMinHasher(family, req.TotalHashes, opts...)
	if err != nil {
		return nil, err
	}

	mat, err := hasher.Build(ctx, dataset)
	if s.progress != nil {
		s.progress.Complete(err == nil)
	}
	if err != nil {
		return nil, err
	}
	return mat, nil
}

// ComputeFromMatrix enumerates similar pairs of an already built matrix
func (s *SimilarityServiceImpl) ComputeFromMatrix(ctx context.Context, mat *analyzer.SignatureMatrix, req *domain.SimilarityRequest) (*domain.SimilarityResponse, error) {
	startTime := time.Now()

	pairs, err := mat.SimilarPairsParallel(ctx, req.Threshold, req.Workers)
	if err != nil {
		return nil, err
	}
	if pairs == nil {
		pairs = []domain.SimilarPair{}
	}

	dataset := mat.Dataset()
	resp := &domain.SimilarityResponse{
		Pairs:          pairs,
		Labels:         mat.Labels(),
		EmptyLabels:    mat.EmptyLabels(),
		Statistics:     s.statistics(mat, dataset, pairs),
		TotalHashes:    mat.TotalHashes(),
		HashFamily:     hashFamilyName(req.HashFamily),
		Threshold:      req.Threshold,
		EmptySetPolicy: mat.EmptySetPolicy(),
		Request:        req,
		Success:        true,
	}

	if req.ShowMatrix {
		resp.Matrix = mat.Rows()
	}

	if req.Exact {
		report, err := BuildAccuracyReport(mat, pairs)
		if err != nil {
			return nil, err
		}
		resp.Accuracy = report
	}

	resp.Duration = time.Since(startTime).Milliseconds()

	log.Debug().
		Int("pairs_compared", resp.Statistics.PairsCompared).
		Int("pairs_reported", resp.Statistics.PairsReported).
		Float64("threshold", req.Threshold).
		Msg("similar pairs enumerated")

	return resp, nil
}

func (s *SimilarityServiceImpl) statistics(mat *analyzer.SignatureMatrix, dataset *domain.Dataset, pairs []domain.SimilarPair) *domain.SimilarityStatistics {
	stats := &domain.SimilarityStatistics{
		Labels:        mat.Len(),
		EmptySets:     len(mat.EmptyLabels()),
		TotalElements: dataset.TotalElements(),
		PairsCompared: mat.PairCount(),
		PairsReported: len(pairs),
	}
	if len(pairs) > 0 {
		sims := make([]float64, len(pairs))
		for i, p := range pairs {
			sims[i] = p.Similarity
		}
		stats.AverageSimilarity = stat.Mean(sims, nil)
	}
	return stats
}

func hashFamilyName(name string) string {
	if name == "" {
		return domain.DefaultHashFamily
	}
	return name
}
