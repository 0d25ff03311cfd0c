package analyzer

import (
	"context"
	"math"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ludo-technologies/setsim/domain"
)

// MinHasher computes MinHash signatures for labeled integer sets
type MinHasher struct {
	family    HashFamily
	numHashes int
	workers   int
	policy    domain.EmptySetPolicy
	progress  func(done, total int)
}

// MinHasherOption configures a MinHasher
type MinHasherOption func(*MinHasher)

// WithWorkers sets how many rows are built concurrently. Zero means GOMAXPROCS.
func WithWorkers(n int) MinHasherOption {
	return func(m *MinHasher) {
		m.workers = n
	}
}

// WithEmptySetPolicy sets how the built matrix treats empty sets in queries.
func WithEmptySetPolicy(policy domain.EmptySetPolicy) MinHasherOption {
	return func(m *MinHasher) {
		if policy != "" {
			m.policy = policy
		}
	}
}

// WithProgress registers a callback invoked after each row is built.
// With more than one worker it is called concurrently.
func WithProgress(fn func(done, total int)) MinHasherOption {
	return func(m *MinHasher) {
		m.progress = fn
	}
}

// NewMinHasher creates a MinHasher with numHashes seeds of family.
// A nil family selects xxHash. numHashes must be positive.
func NewMinHasher(family HashFamily, numHashes int, opts ...MinHasherOption) (*MinHasher, error) {
	if numHashes <= 0 {
		return nil, domain.NewInvalidTotalHashesError(numHashes)
	}
	if family == nil {
		family = XXHashFamily{}
	}
	mh := &MinHasher{
		family:    family,
		numHashes: numHashes,
		workers:   domain.DefaultWorkers,
		policy:    domain.DefaultEmptySetPolicy,
	}
	for _, opt := range opts {
		opt(mh)
	}
	if mh.workers <= 0 {
		mh.workers = runtime.GOMAXPROCS(0)
	}
	return mh, nil
}

// NumHashes returns the signature length
func (m *MinHasher) NumHashes() int { return m.numHashes }

// ComputeSignature computes the signature of one element collection.
// An empty collection yields an undefined signature holding math.MaxUint64 in every column.
func (m *MinHasher) ComputeSignature(elements []int64) Signature {
	sig := make([]uint64, m.numHashes)
	for c := 0; c < m.numHashes; c++ {
		minv := uint64(math.MaxUint64)
		for _, x := range elements {
			if v := m.family.Hash(x, c); v < minv {
				minv = v
			}
		}
		sig[c] = minv
	}
	return Signature{values: sig, defined: len(elements) > 0}
}

// Build computes one signature row per dataset label, in the dataset's label order.
// The returned matrix is complete and read-only.
func (m *MinHasher) Build(ctx context.Context, ds *domain.Dataset) (*SignatureMatrix, error) {
	if ds == nil {
		ds = domain.NewDataset(nil)
	}
	n := ds.Len()
	rows := make([][]uint64, n)
	defined := make([]bool, n)

	log.Debug().
		Int("labels", n).
		Int("total_hashes", m.numHashes).
		Int("workers", m.workers).
		Msg("building signature matrix")

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.workers)

	var done atomic.Int64
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sig := m.ComputeSignature(ds.ElementsAt(i))
			rows[i] = sig.values
			defined[i] = sig.defined
			if m.progress != nil {
				m.progress(int(done.Add(1)), n)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, domain.NewAnalysisError("signature construction cancelled", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.NewAnalysisError("signature construction cancelled", err)
	}

	mat := newSignatureMatrix(ds.Clone(), rows, defined, m.numHashes, m.policy)
	if empty := mat.EmptyLabels(); len(empty) > 0 {
		log.Warn().
			Strs("labels", empty).
			Str("policy", string(m.policy)).
			Msg("labels with no elements have undefined signatures")
	}
	return mat, nil
}

// NewSignatureMatrix builds the matrix for dataset with the default hash family,
// sequentially and with sorted label order.
func NewSignatureMatrix(dataset map[string][]int64, totalHashes int) (*SignatureMatrix, error) {
	mh, err := NewMinHasher(nil, totalHashes)
	if err != nil {
		return nil, err
	}
	return mh.Build(context.Background(), domain.NewDataset(dataset))
}
