package service

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ludo-technologies/setsim/domain"
	"github.com/ludo-technologies/setsim/internal/analyzer"
)

// BuildAccuracyReport compares the estimated similarity of each pair against
// the exact Jaccard similarity of the underlying sets.
func BuildAccuracyReport(mat *analyzer.SignatureMatrix, pairs []domain.SimilarPair) (*domain.AccuracyReport, error) {
	report := &domain.AccuracyReport{Pairs: make([]domain.PairAccuracy, 0, len(pairs))}
	if len(pairs) == 0 {
		return report, nil
	}

	errs := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		exact, err := mat.ExactSimilarity(p.LabelA, p.LabelB)
		if err != nil {
			// two empty sets under the sentinel policy: both are "identical"
			if domain.IsCode(err, domain.ErrCodeUndefinedSignature) {
				exact = 1
			} else {
				return nil, err
			}
		}
		absErr := math.Abs(p.Similarity - exact)
		report.Pairs = append(report.Pairs, domain.PairAccuracy{
			LabelA:    p.LabelA,
			LabelB:    p.LabelB,
			Estimated: p.Similarity,
			Exact:     exact,
			AbsError:  absErr,
		})
		errs = append(errs, absErr)
	}

	report.MeanAbsError, report.StdDevAbsError = stat.MeanStdDev(errs, nil)
	if math.IsNaN(report.StdDevAbsError) {
		report.StdDevAbsError = 0
	}
	for _, e := range errs {
		report.MaxAbsError = math.Max(report.MaxAbsError, e)
	}
	return report, nil
}
