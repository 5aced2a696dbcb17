package minibatch

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor/native"

	"github.com/robovision/roibatch/pkg/blob"
)

func TestDenseFromRows(t *testing.T) {
	require.Nil(t, DenseFromRows(nil))
	require.Nil(t, DenseFromRows([][]float32{}))

	m := DenseFromRows([][]float32{
		{1, 2, 3, 4, 5},
		{6, 7, 8, 9, 10},
	})
	require.Equal(t, []int{2, 5}, []int(m.Shape()))
	rows, err := native.MatrixF32(m)
	require.NoError(t, err)
	require.Equal(t, []float32{6, 7, 8, 9, 10}, rows[1])
}

func TestScaleCoordsBoxes(t *testing.T) {
	m := DenseFromRows([][]float32{
		{10, 20, 30, 40, 7},
	})
	scaleCoords(m, blob.Scale{X: 2, Y: 0.5}, true)
	rows, err := native.MatrixF32(m)
	require.NoError(t, err)
	// x columns double, y columns halve, the label column stays put.
	require.Equal(t, []float32{20, 10, 60, 20, 7}, rows[0])
}

func TestScaleCoordsGrasps(t *testing.T) {
	m := DenseFromRows([][]float32{
		{1, 2, 3, 4, 5, 6, 7, 8},
	})
	scaleCoords(m, blob.Scale{X: 10, Y: 100}, false)
	rows, err := native.MatrixF32(m)
	require.NoError(t, err)
	require.Equal(t, []float32{10, 200, 30, 400, 50, 600, 70, 800}, rows[0])
}
