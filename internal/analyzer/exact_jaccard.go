package analyzer

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/ludo-technologies/setsim/domain"
)

// toBitmap converts elements to a 64-bit roaring bitmap. The int64 to
// uint64 conversion is a bijection, so set sizes are preserved.
func toBitmap(elements []int64) *roaring64.Bitmap {
	bm := roaring64.New()
	for _, v := range elements {
		bm.Add(uint64(v))
	}
	return bm
}

// ExactJaccard computes |A ∩ B| / |A ∪ B| over the distinct elements of a and b.
// ok is false when both collections are empty.
func ExactJaccard(a, b []int64) (sim float64, ok bool) {
	ba, bb := toBitmap(a), toBitmap(b)
	inter := roaring64.And(ba, bb).GetCardinality()
	union := ba.GetCardinality() + bb.GetCardinality() - inter
	if union == 0 {
		return 0, false
	}
	return float64(inter) / float64(union), true
}

// ExactSimilarity computes the exact Jaccard similarity of two labels from the dataset.
func (m *SignatureMatrix) ExactSimilarity(labelA, labelB string) (float64, error) {
	a, ok := m.dataset.Elements(labelA)
	if !ok {
		return 0, domain.NewInvalidInputError(fmt.Sprintf("unknown label %q", labelA), nil)
	}
	b, ok := m.dataset.Elements(labelB)
	if !ok {
		return 0, domain.NewInvalidInputError(fmt.Sprintf("unknown label %q", labelB), nil)
	}
	sim, ok := ExactJaccard(a, b)
	if !ok {
		return 0, domain.NewUndefinedSignatureError("")
	}
	return sim, nil
}
