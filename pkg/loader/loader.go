package loader

// Package loader assembles the per-sample tensor tuples consumed by the
// training loop. One Loader serves one task variant; the variants share a
// single fetch pipeline and differ only in which stages run and which output
// fields are populated.

import (
	"math/rand"

	"github.com/cyclopcam/logs"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/robovision/roibatch/pkg/config"
	"github.com/robovision/roibatch/pkg/gt"
	"github.com/robovision/roibatch/pkg/minibatch"
	"github.com/robovision/roibatch/pkg/rel"
	"github.com/robovision/roibatch/pkg/roidb"
)

type Task int

const (
	TaskObjDet   Task = iota // object detection: boxes
	TaskGraspDet             // grasp detection: grasps
	TaskVMRDet               // visual manipulation relationships: boxes + relation matrix
	TaskROIGDet              // boxes + grasps with per-grasp object indices
	TaskAllInOne             // boxes + grasps + indices + relation matrix
)

// features is the per-task stage selection that replaces the original
// inheritance lattice of loader classes.
type features struct {
	boxes     bool
	grasps    bool
	graspInds bool
	relations bool
}

var taskFeatures = map[Task]features{
	TaskObjDet:   {boxes: true},
	TaskGraspDet: {grasps: true},
	TaskVMRDet:   {boxes: true, relations: true},
	TaskROIGDet:  {boxes: true, grasps: true, graspInds: true},
	TaskAllInOne: {boxes: true, grasps: true, graspInds: true, relations: true},
}

type Options struct {
	Task       Task
	MultiScale bool // images vary in size; enable the crop/pad stages
	Training   bool

	// Rand drives shuffles and crop offsets. Nil uses the shared locked
	// source; a non-nil value gives determinism but must not be shared
	// between concurrent fetchers.
	Rand *rand.Rand

	// Builder produces the raw per-sample arrays. Nil uses the file-reading
	// minibatch.ImageBuilder.
	Builder minibatch.Builder
}

// Sample is the output of one fetch. Fields the task does not produce are
// nil. All tensors are freshly allocated per fetch and owned by the caller.
type Sample struct {
	Data      *tensor.Dense // 3 x H x W image
	ImInfo    *tensor.Dense // height, width, scaleY, scaleX
	Boxes     *tensor.Dense // MaxBoxes x 5, valid rows in [0, NumBoxes)
	NumBoxes  int
	Grasps    *tensor.Dense // MaxGrasps x 8, valid rows in [0, NumGrasps)
	NumGrasps int
	GraspInds *tensor.Dense // MaxGrasps, object index per grasp row
	RelMat    *tensor.Dense // MaxBoxes x MaxBoxes relation codes
}

type Loader struct {
	log        logs.Log
	cfg        *config.Config
	db         []*roidb.Record
	ratioIndex []int
	plan       []float64 // target ratio per fetch position, multi-scale only
	opts       Options
	feat       features
	builder    minibatch.Builder
}

// New builds a loader over db. ratioList and ratioIndex come from
// roidb.RankRatios; both the db and the precomputed batch plan are read-only
// after this call, so fetches may run concurrently.
func New(log logs.Log, cfg *config.Config, db []*roidb.Record, ratioList []float64, ratioIndex []int, opts Options) (*Loader, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	feat, ok := taskFeatures[opts.Task]
	if !ok {
		return nil, errors.Wrapf(ErrInvariant, "unknown task %v", opts.Task)
	}
	if feat.grasps && feat.boxes && !opts.MultiScale {
		return nil, errors.New("combined box+grasp tasks require multi-scale mode")
	}
	if len(ratioList) != len(db) || len(ratioIndex) != len(db) {
		return nil, errors.Errorf("ratio list/index length (%v/%v) does not match dataset size %v",
			len(ratioList), len(ratioIndex), len(db))
	}
	l := &Loader{
		log:        log,
		cfg:        cfg,
		db:         db,
		ratioIndex: ratioIndex,
		opts:       opts,
		feat:       feat,
		builder:    opts.Builder,
	}
	if l.builder == nil {
		l.builder = minibatch.NewImageBuilder(cfg, log, opts.Rand)
	}
	if opts.MultiScale {
		l.plan = BatchRatioPlan(ratioList, cfg.BatchSize)
	}
	log.Infof("Loader ready: %v samples, task %v, multiScale=%v, training=%v", len(db), opts.Task, opts.MultiScale, opts.Training)
	return l, nil
}

func (l *Loader) Len() int {
	return len(l.db)
}

// Fetch prepares the sample at the given position. In training mode the
// position is remapped through the ratio ordering so that consecutive
// positions share a target aspect ratio; outside training it indexes the
// dataset directly.
func (l *Loader) Fetch(index int) (*Sample, error) {
	if index < 0 || index >= len(l.db) {
		return nil, errors.Wrapf(ErrInvariant, "fetch index %v out of range [0, %v)", index, len(l.db))
	}
	recIndex := index
	if l.opts.Training {
		recIndex = l.ratioIndex[index]
	}
	rec := l.db[recIndex]

	blobs, err := l.builder.Build(rec, !l.opts.MultiScale)
	if err != nil {
		return nil, errors.Wrapf(err, "sample %v", recIndex)
	}

	if !l.opts.Training {
		return l.inferenceSample(blobs), nil
	}

	// Shuffle ground truth before any truncation, and remember the
	// permutations so the relationship tree can be re-aligned later.
	var boxes *tensor.Dense
	var boxPerm []int
	if l.feat.boxes {
		if boxes, boxPerm, err = gt.ShuffleRows(blobs.Boxes, l.opts.Rand); err != nil {
			return nil, errors.Wrap(ErrInvariant, err.Error())
		}
	}
	var grasps *tensor.Dense
	var graspInds []float32
	if l.feat.grasps {
		var graspPerm []int
		if grasps, graspPerm, err = gt.ShuffleRows(blobs.Grasps, l.opts.Rand); err != nil {
			return nil, errors.Wrap(ErrInvariant, err.Error())
		}
		if l.feat.graspInds && blobs.GraspInds != nil {
			graspInds = make([]float32, len(graspPerm))
			for i, src := range graspPerm {
				graspInds[i] = blobs.GraspInds[src]
			}
		}
	}

	img := blobs.Data
	imInfo := blobs.ImInfo
	if l.opts.MultiScale {
		ratio := l.plan[index]
		xs, ys := 0, 0
		if rec.NeedCrop {
			var anns []annMat
			if grasps != nil {
				anns = append(anns, annMat{grasps, 8})
			}
			if boxes != nil {
				anns = append(anns, annMat{boxes, 4})
			}
			if img, xs, ys, err = cropToRatio(img, anns, ratio, l.opts.Rand); err != nil {
				return nil, errors.Wrapf(err, "sample %v (%v)", recIndex, rec.ImagePath)
			}
		}
		img = padToRatio(img, &imInfo, ratio)
		if err := gt.ShiftClampBoxes(boxes, float32(xs), float32(ys), img.Width, img.Height); err != nil {
			return nil, errors.Wrap(ErrInvariant, err.Error())
		}
		if l.feat.grasps {
			if grasps, graspInds, err = gt.ShiftFilterGrasps(grasps, graspInds, float32(xs), float32(ys), img.Width, img.Height); err != nil {
				return nil, errors.Wrap(ErrInvariant, err.Error())
			}
		}
	}

	sample := &Sample{
		Data:   img.ToCHW(),
		ImInfo: imInfo.Tensor(),
	}

	if l.feat.boxes {
		padded, keep, err := gt.PadBoxes(boxes, l.cfg.MaxBoxes)
		if err != nil {
			return nil, errors.Wrap(ErrInvariant, err.Error())
		}
		sample.Boxes = padded
		sample.NumBoxes = len(keep)
		if sample.NumBoxes == 0 {
			// Legitimate, but worth a trace when debugging datasets.
			l.log.Debugf("Sample %v has zero ground-truth boxes after filtering", recIndex)
		}
		if l.feat.relations {
			order := make([]int, len(keep))
			for i, k := range keep {
				order[i] = boxPerm[k]
			}
			relMat, err := rel.BuildMatrix(order, blobs.NodeInds, blobs.Children, blobs.Parents, l.cfg.MaxBoxes, l.cfg.Relations)
			if err != nil {
				return nil, errors.Wrap(ErrInvariant, err.Error())
			}
			sample.RelMat = relMat
		}
	}

	if l.feat.grasps {
		var inds []float32
		if l.feat.graspInds {
			inds = graspInds
			if inds == nil {
				inds = []float32{}
			}
		}
		padded, numGrasps, paddedInds, err := gt.PadGrasps(grasps, inds, l.cfg.MaxGrasps)
		if err != nil {
			return nil, errors.Wrap(ErrInvariant, err.Error())
		}
		sample.Grasps = padded
		sample.NumGrasps = numGrasps
		sample.GraspInds = paddedInds
	}

	return sample, nil
}

// inferenceSample carries the image through unchanged and fills every
// ground-truth field with a single-row sentinel: no shuffling, cropping,
// padding or relationship work happens outside training.
func (l *Loader) inferenceSample(blobs *minibatch.Blobs) *Sample {
	s := &Sample{
		Data:   blobs.Data.ToCHW(),
		ImInfo: blobs.ImInfo.Tensor(),
	}
	if l.feat.boxes {
		s.Boxes = tensor.New(tensor.WithShape(1, 5), tensor.WithBacking([]float32{1, 1, 1, 1, 1}))
	}
	if l.feat.grasps {
		s.Grasps = tensor.New(tensor.WithShape(1, 8), tensor.WithBacking([]float32{1, 1, 1, 1, 1, 1, 1, 1}))
	}
	if l.feat.graspInds {
		s.GraspInds = tensor.New(tensor.WithShape(1), tensor.WithBacking([]float32{0}))
	}
	if l.feat.relations {
		s.RelMat = tensor.New(tensor.WithShape(1, 1), tensor.WithBacking([]float32{0}))
	}
	return s
}
