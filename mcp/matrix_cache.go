package mcp

import (
	"context"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/ludo-technologies/setsim/domain"
	"github.com/ludo-technologies/setsim/internal/analyzer"
	"github.com/ludo-technologies/setsim/service"
)

// DefaultMatrixCacheSize is the number of signature matrices kept between tool calls
const DefaultMatrixCacheSize = 32

// CachedSimilarityService keeps recently built signature matrices so repeated
// queries over the same dataset and signature parameters skip the hashing.
// It implements domain.SimilarityService.
type CachedSimilarityService struct {
	inner *service.SimilarityServiceImpl
	cache *lru.Cache[string, *analyzer.SignatureMatrix]
}

// NewCachedSimilarityService creates a caching service holding up to size matrices
func NewCachedSimilarityService(size int) (*CachedSimilarityService, error) {
	if size <= 0 {
		size = DefaultMatrixCacheSize
	}
	cache, err := lru.New[string, *analyzer.SignatureMatrix](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create matrix cache: %w", err)
	}
	return &CachedSimilarityService{
		inner: service.NewSimilarityService(nil),
		cache: cache,
	}, nil
}

// ComputeSimilarities enumerates similar pairs, reusing a cached matrix when possible
func (s *CachedSimilarityService) ComputeSimilarities(ctx context.Context, dataset *domain.Dataset, req *domain.SimilarityRequest) (*domain.SimilarityResponse, error) {
	mat, err := s.Matrix(ctx, dataset, req)
	if err != nil {
		return nil, err
	}
	return s.inner.ComputeFromMatrix(ctx, mat, req)
}

// Matrix returns the signature matrix of dataset for the parameters of req
func (s *CachedSimilarityService) Matrix(ctx context.Context, dataset *domain.Dataset, req *domain.SimilarityRequest) (*analyzer.SignatureMatrix, error) {
	key := matrixCacheKey(dataset, req)
	if mat, ok := s.cache.Get(key); ok {
		log.Debug().Str("key", key).Msg("signature matrix cache hit")
		return mat, nil
	}

	mat, err := s.inner.BuildMatrix(ctx, dataset, req)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, mat)
	return mat, nil
}

// Len returns the number of cached matrices
func (s *CachedSimilarityService) Len() int {
	return s.cache.Len()
}

// matrixCacheKey identifies a matrix by the signature parameters and a
// fingerprint of the dataset content in row order
func matrixCacheKey(dataset *domain.Dataset, req *domain.SimilarityRequest) string {
	d := xxhash.New()
	var buf [8]byte
	for i, label := range dataset.Labels() {
		_, _ = d.WriteString(label)
		_, _ = d.Write([]byte{0})
		elems := dataset.ElementsAt(i)
		binary.LittleEndian.PutUint64(buf[:], uint64(len(elems)))
		_, _ = d.Write(buf[:])
		for _, e := range elems {
			binary.LittleEndian.PutUint64(buf[:], uint64(e))
			_, _ = d.Write(buf[:])
		}
	}

	family := req.HashFamily
	if family == "" {
		family = domain.DefaultHashFamily
	}
	policy := req.EmptySetPolicy
	if policy == "" {
		policy = domain.DefaultEmptySetPolicy
	}
	return strconv.FormatUint(d.Sum64(), 16) + "/" + family + "/" + strconv.Itoa(req.TotalHashes) + "/" + string(policy)
}
