package rel

// Package rel builds the pairwise manipulation-relationship matrix between
// detected objects from their parent/child tree representation.

import (
	"fmt"

	"gorgonia.org/tensor"

	"github.com/robovision/roibatch/pkg/config"
)

// BuildMatrix produces the maxBoxes x maxBoxes relationship matrix for the
// objects listed in order. order holds original annotation-row indices as
// they appear after shuffling and filtering, so row/column i of the matrix
// corresponds to row i of the padded box tensor — call this only after the
// ground truth has reached its final ordering.
//
// Entry (i, j): Father if j's node is a recorded child of i's, Child if it
// is a recorded parent, NoRel otherwise. Pairs whose underlying node index
// is the same (including i == j, and duplicated objects) stay 0. Only the
// top-left len(order) x len(order) block is semantically valid.
func BuildMatrix(order []int, nodeInds []int, children, parents [][]int, maxBoxes int, codes config.RelationCodes) (*tensor.Dense, error) {
	backing := make([]float32, maxBoxes*maxBoxes)
	mat := tensor.New(tensor.WithShape(maxBoxes, maxBoxes), tensor.WithBacking(backing))
	if len(order) > maxBoxes {
		return nil, fmt.Errorf("object order has %v entries, more than the %v box cap", len(order), maxBoxes)
	}
	for _, o := range order {
		if o < 0 || o >= len(nodeInds) {
			return nil, fmt.Errorf("object index %v out of range (%v annotated objects)", o, len(nodeInds))
		}
	}
	for i, oi := range order {
		for j, oj := range order {
			ni := nodeInds[oi]
			nj := nodeInds[oj]
			if ni == nj {
				continue
			}
			switch {
			case containsNode(children[oi], nj):
				backing[i*maxBoxes+j] = codes.Father
			case containsNode(parents[oi], nj):
				backing[i*maxBoxes+j] = codes.Child
			default:
				backing[i*maxBoxes+j] = codes.NoRel
			}
		}
	}
	return mat, nil
}

func containsNode(nodes []int, n int) bool {
	for _, v := range nodes {
		if v == n {
			return true
		}
	}
	return false
}
