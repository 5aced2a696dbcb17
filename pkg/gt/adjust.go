package gt

import (
	"github.com/chewxy/math32"
	"gorgonia.org/tensor"
	"gorgonia.org/tensor/native"
)

// ShiftClampBoxes moves box coordinates to follow a crop whose origin is
// (xs, ys), clamping x into [0, width-1] and y into [0, height-1]. The label
// column is untouched. Mutates in place; a nil input is a no-op.
func ShiftClampBoxes(boxes *tensor.Dense, xs, ys float32, width, height int) error {
	if boxes == nil {
		return nil
	}
	rows, err := native.MatrixF32(boxes)
	if err != nil {
		return err
	}
	maxX := float32(width - 1)
	maxY := float32(height - 1)
	for _, row := range rows {
		for c := 0; c < boxCols-1; c++ {
			if c%2 == 0 {
				row[c] = clamp(row[c]-xs, 0, maxX)
			} else {
				row[c] = clamp(row[c]-ys, 0, maxY)
			}
		}
	}
	return nil
}

// ShiftFilterGrasps moves grasp corner points to follow a crop at (xs, ys).
// A grasp whose shifted corners do not all land strictly inside the image
// (open interval (0, dim) on each axis) has been cut by the crop and is
// dropped entirely rather than clamped. Survivors are clamped into
// [0, dim-1] and returned as a fresh tensor, nil if nothing survives.
// inds, if non-nil, is filtered in lockstep.
func ShiftFilterGrasps(grasps *tensor.Dense, inds []float32, xs, ys float32, width, height int) (*tensor.Dense, []float32, error) {
	if grasps == nil {
		return nil, inds, nil
	}
	rows, err := native.MatrixF32(grasps)
	if err != nil {
		return nil, nil, err
	}
	w := float32(width)
	h := float32(height)
	backing := make([]float32, 0, len(rows)*graspCols)
	var keptInds []float32
	if inds != nil {
		keptInds = make([]float32, 0, len(inds))
	}
	kept := 0
	for i, row := range rows {
		shifted := [graspCols]float32{}
		inside := true
		for c := 0; c < graspCols; c++ {
			var v, dim float32
			if c%2 == 0 {
				v = row[c] - xs
				dim = w
			} else {
				v = row[c] - ys
				dim = h
			}
			if v <= 0 || v >= dim {
				inside = false
				break
			}
			shifted[c] = clamp(v, 0, dim-1)
		}
		if !inside {
			continue
		}
		backing = append(backing, shifted[:]...)
		if inds != nil {
			keptInds = append(keptInds, inds[i])
		}
		kept++
	}
	if kept == 0 {
		return nil, keptInds, nil
	}
	return tensor.New(tensor.WithShape(kept, graspCols), tensor.WithBacking(backing)), keptInds, nil
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(v, hi))
}
