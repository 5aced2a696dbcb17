package gt

import (
	"math/rand"

	"gorgonia.org/tensor"
	"gorgonia.org/tensor/native"
)

// ShuffleRows returns the input with its rows randomly permuted, plus the
// permutation itself: row i of the result is row perm[i] of the input.
// Shuffling happens before fixed-size truncation, so when an annotation
// count exceeds its cap the kept prefix is a uniform random subsample, not
// the first N rows.
//
// r may be nil, in which case the shared locked source is used. Passing an
// unshared *rand.Rand makes the fetch deterministic (tests) but is not safe
// across concurrent fetches.
func ShuffleRows(m *tensor.Dense, r *rand.Rand) (*tensor.Dense, []int, error) {
	if m == nil {
		return nil, nil, nil
	}
	rows, err := native.MatrixF32(m)
	if err != nil {
		return nil, nil, err
	}
	var perm []int
	if r != nil {
		perm = r.Perm(len(rows))
	} else {
		perm = rand.Perm(len(rows))
	}
	cols := m.Shape()[1]
	backing := make([]float32, 0, len(rows)*cols)
	for _, src := range perm {
		backing = append(backing, rows[src]...)
	}
	return tensor.New(tensor.WithShape(len(rows), cols), tensor.WithBacking(backing)), perm, nil
}
