package gt

import (
	"gorgonia.org/tensor"
	"gorgonia.org/tensor/native"
)

const graspCols = 8 // four corner points: x1,y1 ... x4,y4

// PadGrasps truncates the grasp list to at most maxGrasps rows (no
// degeneracy filtering, unlike boxes) and zero-pads the remainder of a fixed
// maxGrasps x 8 tensor. If inds is non-nil it is the per-grasp object index
// list, truncated and padded in lockstep and returned as a length-maxGrasps
// vector; otherwise the third result is nil.
func PadGrasps(grasps *tensor.Dense, inds []float32, maxGrasps int) (*tensor.Dense, int, *tensor.Dense, error) {
	backing := make([]float32, maxGrasps*graspCols)
	padded := tensor.New(tensor.WithShape(maxGrasps, graspCols), tensor.WithBacking(backing))

	numGrasps := 0
	if grasps != nil {
		rows, err := native.MatrixF32(grasps)
		if err != nil {
			return nil, 0, nil, err
		}
		numGrasps = min(len(rows), maxGrasps)
		for i := 0; i < numGrasps; i++ {
			copy(backing[i*graspCols:(i+1)*graspCols], rows[i])
		}
	}

	if inds == nil {
		return padded, numGrasps, nil, nil
	}
	indsBacking := make([]float32, maxGrasps)
	copy(indsBacking, inds[:min(len(inds), maxGrasps)])
	paddedInds := tensor.New(tensor.WithShape(maxGrasps), tensor.WithBacking(indsBacking))
	return padded, numGrasps, paddedInds, nil
}
