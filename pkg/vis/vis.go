package vis

// Debug rendering of prepared samples. Training consumes the tensors
// directly; this exists so a human can eyeball what the pipeline actually
// produced after shuffling, cropping and padding.

import (
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"gorgonia.org/tensor"
	"gorgonia.org/tensor/native"

	"github.com/robovision/roibatch/pkg/blob"
	"github.com/robovision/roibatch/pkg/config"
)

var palette = []color.RGBA{
	{230, 25, 75, 255},
	{60, 180, 75, 255},
	{255, 225, 25, 255},
	{0, 130, 200, 255},
	{245, 130, 48, 255},
	{145, 30, 180, 255},
	{70, 240, 240, 255},
	{240, 50, 230, 255},
}

// ToImage undoes the blob normalization (channel swap, mean subtraction) so
// the prepared pixels are displayable again. mean is in RGB order, matching
// config.PixelMeans.
func ToImage(im *blob.Image, mean [3]float32) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, im.Width, im.Height))
	for y := 0; y < im.Height; y++ {
		row := im.Row(y)
		for x := 0; x < im.Width; x++ {
			r := row[x*3+2] + mean[0]
			g := row[x*3+1] + mean[1]
			b := row[x*3] + mean[2]
			out.SetRGBA(x, y, color.RGBA{clampByte(r), clampByte(g), clampByte(b), 255})
		}
	}
	return out
}

// DrawBoxes outlines the first numBoxes rows of a padded box tensor,
// color-cycled by class label. classes may be nil, in which case no label
// text is drawn.
func DrawBoxes(dc *gg.Context, boxes *tensor.Dense, numBoxes int, classes []string) error {
	rows, err := native.MatrixF32(boxes)
	if err != nil {
		return err
	}
	dc.SetLineWidth(2)
	for i := 0; i < numBoxes; i++ {
		row := rows[i]
		label := int(row[4])
		col := palette[label%len(palette)]
		dc.SetColor(col)
		x1, y1 := float64(row[0]), float64(row[1])
		x2, y2 := float64(row[2]), float64(row[3])
		dc.DrawRectangle(x1, y1, x2-x1, y2-y1)
		dc.Stroke()
		if classes != nil && label >= 0 && label < len(classes) {
			dc.DrawString(classes[label], x1+2, y1+12)
		}
	}
	return nil
}

// DrawGrasps traces each grasp rectangle through its four corner points.
func DrawGrasps(dc *gg.Context, grasps *tensor.Dense, numGrasps int) error {
	rows, err := native.MatrixF32(grasps)
	if err != nil {
		return err
	}
	dc.SetLineWidth(1.5)
	for i := 0; i < numGrasps; i++ {
		row := rows[i]
		col := palette[i%len(palette)]
		dc.SetColor(col)
		dc.MoveTo(float64(row[0]), float64(row[1]))
		for p := 1; p < 4; p++ {
			dc.LineTo(float64(row[p*2]), float64(row[p*2+1]))
		}
		dc.ClosePath()
		dc.Stroke()
	}
	return nil
}

// DrawRelations draws an arrow from each father box's center to each of its
// children, following the top-left numBoxes x numBoxes block of the relation
// matrix.
func DrawRelations(dc *gg.Context, boxes, relMat *tensor.Dense, numBoxes int, codes config.RelationCodes) error {
	boxRows, err := native.MatrixF32(boxes)
	if err != nil {
		return err
	}
	relRows, err := native.MatrixF32(relMat)
	if err != nil {
		return err
	}
	dc.SetLineWidth(2)
	dc.SetColor(color.RGBA{255, 255, 255, 255})
	for i := 0; i < numBoxes; i++ {
		for j := 0; j < numBoxes; j++ {
			if relRows[i][j] != codes.Father {
				continue
			}
			fx, fy := boxCenter(boxRows[i])
			cx, cy := boxCenter(boxRows[j])
			dc.DrawLine(fx, fy, cx, cy)
			dc.Stroke()
			drawArrowHead(dc, fx, fy, cx, cy)
		}
	}
	return nil
}

// RenderSample is the one-call path: undo normalization, draw whatever
// annotations are present, and hand back the composed image.
func RenderSample(im *blob.Image, mean [3]float32, boxes *tensor.Dense, numBoxes int,
	grasps *tensor.Dense, numGrasps int, classes []string) (image.Image, error) {
	dc := gg.NewContextForRGBA(ToImage(im, mean))
	if boxes != nil {
		if err := DrawBoxes(dc, boxes, numBoxes, classes); err != nil {
			return nil, err
		}
	}
	if grasps != nil {
		if err := DrawGrasps(dc, grasps, numGrasps); err != nil {
			return nil, err
		}
	}
	return dc.Image(), nil
}

// SavePNG writes a rendered sample to disk.
func SavePNG(path string, img image.Image) error {
	return gg.SavePNG(path, img)
}

func boxCenter(row []float32) (float64, float64) {
	return float64(row[0]+row[2]) / 2, float64(row[1]+row[3]) / 2
}

func drawArrowHead(dc *gg.Context, fromX, fromY, toX, toY float64) {
	angle := math.Atan2(toY-fromY, toX-fromX)
	const size = 8.0
	dc.MoveTo(toX, toY)
	dc.LineTo(toX-size*math.Cos(angle-math.Pi/6), toY-size*math.Sin(angle-math.Pi/6))
	dc.MoveTo(toX, toY)
	dc.LineTo(toX-size*math.Cos(angle+math.Pi/6), toY-size*math.Sin(angle+math.Pi/6))
	dc.Stroke()
}

func clampByte(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
