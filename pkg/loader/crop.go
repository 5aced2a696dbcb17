package loader

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
	"gorgonia.org/tensor/native"

	"github.com/robovision/roibatch/pkg/blob"
)

// annMat is one annotation matrix participating in a crop decision: its
// first coordCols columns alternate x,y coordinates (a trailing label column
// is excluded by coordCols).
type annMat struct {
	m         *tensor.Dense
	coordCols int
}

// coordBounds returns the tightest bound of all annotation coordinates.
// ok is false when there are no coordinates at all.
func coordBounds(anns []annMat) (minX, maxX, minY, maxY float32, ok bool, err error) {
	for _, ann := range anns {
		if ann.m == nil {
			continue
		}
		rows, e := native.MatrixF32(ann.m)
		if e != nil {
			return 0, 0, 0, 0, false, e
		}
		for _, row := range rows {
			for c := 0; c < ann.coordCols; c++ {
				v := row[c]
				if c%2 == 0 {
					if !ok || v < minX {
						minX = v
					}
					if !ok || v > maxX {
						maxX = v
					}
				} else {
					if !ok || v < minY {
						minY = v
					}
					if !ok || v > maxY {
						maxY = v
					}
				}
				if c == 1 {
					// both axes seeded once the first x,y pair is in
					ok = true
				}
			}
		}
	}
	return
}

// cropStart picks the crop offset along one axis. minC..maxC is the
// annotation bounding region on that axis, trim the crop length, dim the
// image length. When the region fits inside the crop window the start is
// uniform over all placements that keep the region visible; when it does
// not fit, the crop is centered on the region (floored). Ranges that
// collapse to a single valid start are resolved without randomness.
func cropStart(minC, maxC, trim, dim int, r *rand.Rand) (int, error) {
	if minC < 0 {
		return 0, errors.Wrapf(ErrBadAnnotation, "annotation coordinate %v is negative", minC)
	}
	if minC == 0 {
		return 0, nil
	}
	region := maxC - minC + 1
	if region < trim {
		sMin := max(maxC-trim, 0)
		sMax := min(minC, dim-trim)
		if sMax <= sMin {
			return sMin, nil
		}
		return sMin + intn(r, sMax-sMin), nil
	}
	add := (region - trim) / 2
	if add == 0 {
		return minC, nil
	}
	return minC + intn(r, add), nil
}

// cropToRatio trims the oversized image dimension so the image can be padded
// to targetRatio (width/height). Ratios below 1 crop height, the rest crop
// width. The annotation bounding region stays inside the crop whenever it
// fits. Returns the cropped image and the crop origin.
func cropToRatio(img *blob.Image, anns []annMat, targetRatio float64, r *rand.Rand) (*blob.Image, int, int, error) {
	minXf, maxXf, minYf, maxYf, ok, err := coordBounds(anns)
	if err != nil {
		return nil, 0, 0, errors.Wrap(ErrInvariant, err.Error())
	}
	if !ok {
		// Nothing anchors the crop; trim from the origin.
		minXf, maxXf, minYf, maxYf = 0, 0, 0, 0
	}

	if targetRatio < 1 {
		// The image is too tall for the target: crop height.
		trim := int(math.Floor(float64(img.Width) / targetRatio))
		if trim > img.Height {
			trim = img.Height
		}
		ys, err := cropStart(int(minYf), int(maxYf), trim, img.Height, r)
		if err != nil {
			return nil, 0, 0, err
		}
		return img.CropRows(ys, trim), 0, ys, nil
	}

	// Too wide: crop width.
	trim := int(math.Ceil(float64(img.Height) * targetRatio))
	if trim > img.Width {
		trim = img.Width
	}
	xs, err := cropStart(int(minXf), int(maxXf), trim, img.Width, r)
	if err != nil {
		return nil, 0, 0, err
	}
	return img.CropCols(xs, trim), xs, 0, nil
}

// padToRatio grows the short dimension with zero padding so the image
// matches targetRatio exactly, and updates im_info to the new dimensions.
//
// The ratio == 1 branch does not pad at all: it crops the top-left
// min(height, width) square. That asymmetry is longstanding behavior that
// downstream consumers rely on, so it is kept as is.
func padToRatio(img *blob.Image, info *blob.ImInfo, targetRatio float64) *blob.Image {
	if targetRatio < 1 {
		newHeight := int(math.Ceil(float64(img.Width) / targetRatio))
		out := blob.NewImage(img.Width, newHeight)
		copy(out.Pixels, img.Pixels)
		info.Height = float32(newHeight)
		return out
	}
	if targetRatio > 1 {
		newWidth := int(math.Ceil(float64(img.Height) * targetRatio))
		out := blob.NewImage(newWidth, img.Height)
		for y := 0; y < img.Height; y++ {
			copy(out.Row(y), img.Row(y))
		}
		info.Width = float32(newWidth)
		return out
	}
	trim := min(img.Height, img.Width)
	out := img.CropRows(0, trim).CropCols(0, trim)
	info.Height = float32(trim)
	info.Width = float32(trim)
	return out
}

func intn(r *rand.Rand, n int) int {
	if r != nil {
		return r.Intn(n)
	}
	return rand.Intn(n)
}
