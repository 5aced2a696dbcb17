package minibatch

// The minibatch builder turns one roidb record into the raw, un-padded
// arrays that the loaders post-process: the scaled image blob plus ground
// truth with coordinates mapped into blob space.

import (
	"math/rand"

	"github.com/bmharper/cimg/v2"
	"github.com/cyclopcam/logs"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/robovision/roibatch/pkg/blob"
	"github.com/robovision/roibatch/pkg/config"
	"github.com/robovision/roibatch/pkg/roidb"
)

// Blobs is the raw single-sample bundle handed to a loader. Tensor fields
// are nil when the record carries no such annotation.
type Blobs struct {
	Data      *blob.Image
	ImInfo    blob.ImInfo
	Boxes     *tensor.Dense // N x 5, coordinates in blob space
	Grasps    *tensor.Dense // M x 8, coordinates in blob space
	GraspInds []float32     // M, node index of the object each grasp belongs to

	// Relationship tree, aligned with the record's box order.
	NodeInds []int
	Parents  [][]int
	Children [][]int
}

// Builder produces the raw per-sample arrays. fixSize selects the scaling
// mode: true scales both axes to a square target (uniform-input tasks),
// false scales the shorter side only (multi-scale tasks).
type Builder interface {
	Build(rec *roidb.Record, fixSize bool) (*Blobs, error)
}

// ImageBuilder is the file-reading Builder. It decodes the record's image,
// applies the stored flip, scales image and annotations together, and
// normalizes the pixels (mean subtraction + channel swap).
type ImageBuilder struct {
	cfg *config.Config
	log logs.Log
	rnd *rand.Rand // may be nil, in which case the shared locked source is used
}

func NewImageBuilder(cfg *config.Config, log logs.Log, rnd *rand.Rand) *ImageBuilder {
	return &ImageBuilder{
		cfg: cfg,
		log: log,
		rnd: rnd,
	}
}

func (b *ImageBuilder) Build(rec *roidb.Record, fixSize bool) (*Blobs, error) {
	img, err := cimg.ReadFile(rec.ImagePath)
	if err != nil {
		return nil, errors.Wrapf(err, "read %v", rec.ImagePath)
	}
	img = img.ToRGB()

	targetSize := b.cfg.Scales[0]
	if len(b.cfg.Scales) > 1 {
		targetSize = b.cfg.Scales[intn(b.rnd, len(b.cfg.Scales))]
	}
	data, scale, err := blob.Prep(img, targetSize, fixSize)
	if err != nil {
		return nil, errors.Wrapf(err, "prep %v", rec.ImagePath)
	}
	if rec.Flipped {
		// Annotation coordinates are stored already flipped, so only the
		// pixels need mirroring.
		data.FlipHorizontal()
	}

	boxes := DenseFromRows(rec.Boxes)
	if boxes != nil {
		scaleCoords(boxes, scale, true)
	}
	grasps := DenseFromRows(rec.Grasps)
	if grasps != nil {
		scaleCoords(grasps, scale, false)
	}

	data.SubtractMean(b.cfg.PixelMeans)
	data.SwapRB()

	return &Blobs{
		Data: data,
		ImInfo: blob.ImInfo{
			Height: float32(data.Height),
			Width:  float32(data.Width),
			ScaleY: scale.Y,
			ScaleX: scale.X,
		},
		Boxes:     boxes,
		Grasps:    grasps,
		GraspInds: append([]float32(nil), rec.GraspInds...),
		NodeInds:  rec.NodeInds,
		Parents:   rec.Parents,
		Children:  rec.Children,
	}, nil
}

// DenseFromRows copies a row-list annotation into a fresh N x C tensor.
// Returns nil for an empty list (gorgonia rejects zero-sized shapes).
func DenseFromRows(rows [][]float32) *tensor.Dense {
	if len(rows) == 0 {
		return nil
	}
	cols := len(rows[0])
	backing := make([]float32, 0, len(rows)*cols)
	for _, row := range rows {
		backing = append(backing, row...)
	}
	return tensor.New(tensor.WithShape(len(rows), cols), tensor.WithBacking(backing))
}

// scaleCoords multiplies x coordinates by scale.X and y coordinates by
// scale.Y, in place. Coordinates alternate x,y. If hasLabel is true the last
// column is a class label and is left alone.
func scaleCoords(m *tensor.Dense, scale blob.Scale, hasLabel bool) {
	rows := m.Shape()[0]
	cols := m.Shape()[1]
	coordCols := cols
	if hasLabel {
		coordCols--
	}
	backing := m.Data().([]float32)
	for r := 0; r < rows; r++ {
		row := backing[r*cols : (r+1)*cols]
		for c := 0; c < coordCols; c++ {
			if c%2 == 0 {
				row[c] *= scale.X
			} else {
				row[c] *= scale.Y
			}
		}
	}
}

func intn(r *rand.Rand, n int) int {
	if r != nil {
		return r.Intn(n)
	}
	return rand.Intn(n)
}
