package domain

import (
	"fmt"
	"slices"
	"sort"
)

// KeyOrder selects how dataset labels are ordered into signature rows.
type KeyOrder string

const (
	// KeyOrderSorted orders labels lexicographically.
	KeyOrderSorted KeyOrder = "sorted"
	// KeyOrderInsertion keeps the order in which the loader first saw each label.
	KeyOrderInsertion KeyOrder = "insertion"
)

// Dataset maps unique labels to their element collections and carries an
// explicit label order. Element collections may be empty or hold duplicates.
type Dataset struct {
	labels []string
	sets   map[string][]int64
}

// NewDataset builds a dataset from a plain mapping. Labels are sorted.
func NewDataset(sets map[string][]int64) *Dataset {
	labels := make([]string, 0, len(sets))
	for label := range sets {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	ds := &Dataset{labels: labels, sets: make(map[string][]int64, len(sets))}
	for label, elems := range sets {
		ds.sets[label] = slices.Clone(elems)
	}
	return ds
}

// DatasetBuilder accumulates labels in first-seen order.
type DatasetBuilder struct {
	labels []string
	sets   map[string][]int64
}

// NewDatasetBuilder creates an empty builder.
func NewDatasetBuilder() *DatasetBuilder {
	return &DatasetBuilder{sets: make(map[string][]int64)}
}

// Declare registers a label without adding elements, so empty sets survive.
func (b *DatasetBuilder) Declare(label string) {
	if _, ok := b.sets[label]; ok {
		return
	}
	b.labels = append(b.labels, label)
	b.sets[label] = []int64{}
}

// Add appends elements to a label, declaring it if necessary.
func (b *DatasetBuilder) Add(label string, elems ...int64) {
	b.Declare(label)
	b.sets[label] = append(b.sets[label], elems...)
}

// Has reports whether the label was already declared.
func (b *DatasetBuilder) Has(label string) bool {
	_, ok := b.sets[label]
	return ok
}

// Build returns the dataset with labels arranged by order.
func (b *DatasetBuilder) Build(order KeyOrder) *Dataset {
	labels := slices.Clone(b.labels)
	if order != KeyOrderInsertion {
		sort.Strings(labels)
	}
	sets := make(map[string][]int64, len(b.sets))
	for label, elems := range b.sets {
		sets[label] = slices.Clone(elems)
	}
	return &Dataset{labels: labels, sets: sets}
}

// Labels returns a copy of the label order.
func (d *Dataset) Labels() []string {
	if d == nil {
		return nil
	}
	return slices.Clone(d.labels)
}

// Len returns the number of labels.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.labels)
}

// Elements returns a copy of the element collection of label.
func (d *Dataset) Elements(label string) ([]int64, bool) {
	if d == nil {
		return nil, false
	}
	elems, ok := d.sets[label]
	if !ok {
		return nil, false
	}
	return slices.Clone(elems), true
}

// ElementsAt returns the collection of the i-th label without copying.
// Callers must not modify the returned slice.
func (d *Dataset) ElementsAt(i int) []int64 {
	return d.sets[d.labels[i]]
}

// Map returns a copy of the dataset as a plain mapping.
func (d *Dataset) Map() map[string][]int64 {
	out := make(map[string][]int64, d.Len())
	if d == nil {
		return out
	}
	for label, elems := range d.sets {
		out[label] = slices.Clone(elems)
	}
	return out
}

// EmptyLabels returns labels whose collection has no elements, in label order.
func (d *Dataset) EmptyLabels() []string {
	var out []string
	for _, label := range d.Labels() {
		if len(d.sets[label]) == 0 {
			out = append(out, label)
		}
	}
	return out
}

// TotalElements returns the number of elements across all collections, duplicates included.
func (d *Dataset) TotalElements() int {
	total := 0
	if d == nil {
		return total
	}
	for _, elems := range d.sets {
		total += len(elems)
	}
	return total
}

// Clone returns a deep copy.
func (d *Dataset) Clone() *Dataset {
	if d == nil {
		return nil
	}
	return &Dataset{labels: slices.Clone(d.labels), sets: d.Map()}
}

// String returns a short description of the dataset
func (d *Dataset) String() string {
	return fmt.Sprintf("Dataset{Labels: %d, Elements: %d}", d.Len(), d.TotalElements())
}
