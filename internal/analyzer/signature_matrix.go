package analyzer

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"

	"github.com/ludo-technologies/setsim/domain"
)

// Signature is one MinHash row. A signature built from an empty collection
// is undefined and holds math.MaxUint64 in every column.
type Signature struct {
	values  []uint64
	defined bool
}

// NewSignature wraps a copy of values as a defined signature
func NewSignature(values []uint64) Signature {
	return Signature{values: slices.Clone(values), defined: true}
}

// UndefinedSignature returns the sentinel signature of an empty set
func UndefinedSignature(numHashes int) Signature {
	values := make([]uint64, numHashes)
	for i := range values {
		values[i] = math.MaxUint64
	}
	return Signature{values: values}
}

// Len returns the number of columns
func (s Signature) Len() int { return len(s.values) }

// At returns column c
func (s Signature) At(c int) uint64 { return s.values[c] }

// Values returns a copy of the columns
func (s Signature) Values() []uint64 { return slices.Clone(s.values) }

// Defined reports whether the signature came from a non-empty collection
func (s Signature) Defined() bool { return s.defined }

// SignatureMatrix is the read-only result of MinHasher.Build: one signature
// row per label, in key order, each with TotalHashes columns.
type SignatureMatrix struct {
	labels      []string
	index       map[string]int
	rows        [][]uint64
	defined     []bool
	totalHashes int
	dataset     *domain.Dataset
	policy      domain.EmptySetPolicy
}

func newSignatureMatrix(ds *domain.Dataset, rows [][]uint64, defined []bool, totalHashes int, policy domain.EmptySetPolicy) *SignatureMatrix {
	labels := ds.Labels()
	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}
	return &SignatureMatrix{
		labels:      labels,
		index:       index,
		rows:        rows,
		defined:     defined,
		totalHashes: totalHashes,
		dataset:     ds,
		policy:      policy,
	}
}

// Len returns the number of rows
func (m *SignatureMatrix) Len() int { return len(m.rows) }

// TotalHashes returns the number of columns of every row
func (m *SignatureMatrix) TotalHashes() int { return m.totalHashes }

// EmptySetPolicy returns the policy applied to undefined rows
func (m *SignatureMatrix) EmptySetPolicy() domain.EmptySetPolicy { return m.policy }

// Labels returns the key order
func (m *SignatureMatrix) Labels() []string { return slices.Clone(m.labels) }

// Dataset returns a copy of the dataset the matrix was built from
func (m *SignatureMatrix) Dataset() *domain.Dataset { return m.dataset.Clone() }

// Row returns the signature at row i
func (m *SignatureMatrix) Row(i int) Signature {
	return Signature{values: slices.Clone(m.rows[i]), defined: m.defined[i]}
}

// RowByLabel returns the signature of label
func (m *SignatureMatrix) RowByLabel(label string) (Signature, bool) {
	i, ok := m.index[label]
	if !ok {
		return Signature{}, false
	}
	return m.Row(i), true
}

// Rows returns a deep copy of all rows
func (m *SignatureMatrix) Rows() [][]uint64 {
	out := make([][]uint64, len(m.rows))
	for i, row := range m.rows {
		out[i] = slices.Clone(row)
	}
	return out
}

// EmptyLabels returns the labels whose signature is undefined, in key order
func (m *SignatureMatrix) EmptyLabels() []string {
	var out []string
	for i, ok := range m.defined {
		if !ok {
			out = append(out, m.labels[i])
		}
	}
	return out
}

// Dump writes each row as its column values, each followed by " ; ", one row per line.
func (m *SignatureMatrix) Dump(w io.Writer) error {
	return DumpRows(w, m.rows)
}

// DumpRows writes rows in the Dump format.
func DumpRows(w io.Writer, rows [][]uint64) error {
	bw := bufio.NewWriter(w)
	buf := make([]byte, 0, 24)
	for _, row := range rows {
		for _, v := range row {
			buf = strconv.AppendUint(buf[:0], v, 10)
			buf = append(buf, " ; "...)
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// String returns a short description of the matrix
func (m *SignatureMatrix) String() string {
	return fmt.Sprintf("SignatureMatrix{Rows: %d, TotalHashes: %d, Empty: %d}",
		m.Len(), m.totalHashes, len(m.EmptyLabels()))
}
