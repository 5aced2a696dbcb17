package gt

// Package gt normalizes variable-count ground-truth annotations into the
// fixed-size tensors the training loop expects, and keeps annotation
// coordinates in sync with image crops.

import (
	"gorgonia.org/tensor"
	"gorgonia.org/tensor/native"
)

const boxCols = 5 // x1, y1, x2, y2, label

// PadBoxes drops degenerate boxes (zero width or zero height), truncates the
// survivors to maxBoxes in their current order, and copies them into the
// prefix of a zero-initialized maxBoxes x 5 tensor. The returned keep slice
// holds the row indices of the surviving boxes in the input, so callers can
// re-align data that parallels the input rows (e.g. shuffle permutations for
// the relationship matrix).
//
// A nil input, or an input with no surviving boxes, yields an all-zero
// tensor and an empty keep slice. That is a legitimate empty sample, not an
// error.
func PadBoxes(boxes *tensor.Dense, maxBoxes int) (*tensor.Dense, []int, error) {
	backing := make([]float32, maxBoxes*boxCols)
	padded := tensor.New(tensor.WithShape(maxBoxes, boxCols), tensor.WithBacking(backing))
	keep := []int{}
	if boxes == nil {
		return padded, keep, nil
	}
	rows, err := native.MatrixF32(boxes)
	if err != nil {
		return nil, nil, err
	}
	for i, row := range rows {
		if row[0] == row[2] || row[1] == row[3] {
			continue
		}
		keep = append(keep, i)
		if len(keep) == maxBoxes {
			break
		}
	}
	for out, in := range keep {
		copy(backing[out*boxCols:(out+1)*boxCols], rows[in])
	}
	return padded, keep, nil
}
