package loader

import (
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/robovision/roibatch/pkg/blob"
)

func boxMat(t *testing.T, rows [][]float32) *tensor.Dense {
	t.Helper()
	cols := len(rows[0])
	backing := make([]float32, 0, len(rows)*cols)
	for _, r := range rows {
		backing = append(backing, r...)
	}
	return tensor.New(tensor.WithShape(len(rows), cols), tensor.WithBacking(backing))
}

// Fill an image with its row index so crops are easy to verify.
func rowIndexImage(width, height int) *blob.Image {
	im := blob.NewImage(width, height)
	for y := 0; y < height; y++ {
		row := im.Row(y)
		for i := range row {
			row[i] = float32(y)
		}
	}
	return im
}

func TestCropHeightKeepsAnnotations(t *testing.T) {
	img := rowIndexImage(60, 150)
	boxes := boxMat(t, [][]float32{{5, 10, 40, 30, 1}})
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 20; i++ {
		cropped, xs, ys, err := cropToRatio(img, []annMat{{boxes, 4}}, 0.6, rng)
		require.NoError(t, err)
		require.Equal(t, 0, xs)
		// trim = floor(60 / 0.6) = 100
		require.Equal(t, 100, cropped.Height)
		require.Equal(t, 60, cropped.Width)
		// The whole annotation span [10, 30] must stay inside the window.
		require.LessOrEqual(t, ys, 10)
		require.GreaterOrEqual(t, ys+100, 31)
		// Cropped rows really are the source rows starting at ys.
		require.Equal(t, float32(ys), cropped.Row(0)[0])
	}
}

func TestCropWidth(t *testing.T) {
	img := blob.NewImage(150, 60)
	boxes := boxMat(t, [][]float32{{20, 5, 50, 40, 1}})
	cropped, xs, ys, err := cropToRatio(img, []annMat{{boxes, 4}}, 1.5, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Equal(t, 0, ys)
	// trim = ceil(60 * 1.5) = 90
	require.Equal(t, 90, cropped.Width)
	require.Equal(t, 60, cropped.Height)
	require.LessOrEqual(t, xs, 20)
	require.GreaterOrEqual(t, xs+90, 51)
}

func TestCropCenteredWhenRegionTooLarge(t *testing.T) {
	// Annotation span [5, 95] (region 91) exceeds trim 83, so the crop is
	// centered on the region: start in [minC, minC + (region-trim)/2).
	img := blob.NewImage(50, 100)
	boxes := boxMat(t, [][]float32{{1, 5, 40, 95, 1}})
	for i := 0; i < 20; i++ {
		cropped, _, ys, err := cropToRatio(img, []annMat{{boxes, 4}}, 0.6, rand.New(rand.NewSource(int64(i))))
		require.NoError(t, err)
		require.Equal(t, 83, cropped.Height)
		require.GreaterOrEqual(t, ys, 5)
		require.Less(t, ys, 9)
		// The region midpoint (50) lies inside the crop window.
		require.LessOrEqual(t, ys, 50)
		require.GreaterOrEqual(t, ys+83, 50)
	}
}

func TestCropSingleValidStartIsDeterministic(t *testing.T) {
	// trim == height, so the only valid start is 0 regardless of rng.
	img := blob.NewImage(50, 100)
	boxes := boxMat(t, [][]float32{{1, 20, 40, 60, 1}})
	_, _, ys, err := cropToRatio(img, []annMat{{boxes, 4}}, 0.5, nil)
	require.NoError(t, err)
	require.Equal(t, 0, ys)

	// Excess exactly zero: offset lands on the region start, no randomness.
	img2 := blob.NewImage(50, 100)
	boxes2 := boxMat(t, [][]float32{{1, 10, 40, 92, 1}}) // region 83 == trim 83
	_, _, ys2, err := cropToRatio(img2, []annMat{{boxes2, 4}}, 0.6, nil)
	require.NoError(t, err)
	require.Equal(t, 10, ys2)
}

func TestCropNegativeCoordinateIsFatal(t *testing.T) {
	img := blob.NewImage(50, 100)
	boxes := boxMat(t, [][]float32{{1, -3, 40, 60, 1}})
	_, _, _, err := cropToRatio(img, []annMat{{boxes, 4}}, 0.6, nil)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrBadAnnotation))
}

func TestCropUsesAllAnnotationMatrices(t *testing.T) {
	// The grasp extends the bounding region beyond the boxes, so the crop
	// window must accommodate both.
	img := blob.NewImage(60, 150)
	boxes := boxMat(t, [][]float32{{5, 50, 40, 60, 1}})
	grasps := boxMat(t, [][]float32{{5, 90, 10, 90, 10, 99, 5, 99}})
	for i := 0; i < 10; i++ {
		_, _, ys, err := cropToRatio(img, []annMat{{grasps, 8}, {boxes, 4}}, 0.6, rand.New(rand.NewSource(int64(i))))
		require.NoError(t, err)
		require.LessOrEqual(t, ys, 50)
		require.GreaterOrEqual(t, ys+100, 100)
	}
}

func TestPadToRatioTall(t *testing.T) {
	img := rowIndexImage(60, 80)
	info := blob.ImInfo{Height: 80, Width: 60}
	out := padToRatio(img, &info, 0.5)
	// new height = ceil(60 / 0.5) = 120, width unchanged
	require.Equal(t, 120, out.Height)
	require.Equal(t, 60, out.Width)
	require.Equal(t, float32(120), info.Height)
	require.Equal(t, float32(60), info.Width)
	// Original content sits at the top, padding below is zero.
	require.Equal(t, float32(79), out.Row(79)[0])
	require.Equal(t, float32(0), out.Row(80)[0])
}

func TestPadToRatioWide(t *testing.T) {
	img := blob.NewImage(80, 60)
	for y := 0; y < 60; y++ {
		img.Row(y)[0] = 7
	}
	info := blob.ImInfo{Height: 60, Width: 80}
	out := padToRatio(img, &info, 2)
	require.Equal(t, 160, out.Width)
	require.Equal(t, 60, out.Height)
	require.Equal(t, float32(160), info.Width)
	require.Equal(t, float32(7), out.Row(0)[0])
	require.Equal(t, float32(0), out.Row(0)[80*3])
}

func TestPadToRatioSquareCrops(t *testing.T) {
	// The ratio == 1 branch pads nothing: it takes the top-left square.
	img := rowIndexImage(60, 100)
	info := blob.ImInfo{Height: 100, Width: 60}
	out := padToRatio(img, &info, 1)
	require.Equal(t, 60, out.Height)
	require.Equal(t, 60, out.Width)
	require.Equal(t, float32(60), info.Height)
	require.Equal(t, float32(60), info.Width)
	require.Equal(t, float32(59), out.Row(59)[0])
}
