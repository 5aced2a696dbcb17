package roidb

// roidb holds the annotated sample records that the loaders fetch from.
// Records are built once by whatever loads the dataset annotations, and are
// read-only from then on, so they are safe to share between fetch workers.

// One annotated image. Boxes are corner coordinates plus a class label
// (x1,y1,x2,y2,label). Grasps are oriented rectangles stored as their four
// corner points (x1,y1 ... x4,y4).
//
// NodeInds, Parents and Children describe the manipulation-order tree for
// relationship tasks: entry i of each belongs to box i, and the parent/child
// lists contain node indices (values of NodeInds), not box positions.
type Record struct {
	ImagePath string
	Width     int
	Height    int

	Boxes     [][]float32
	Grasps    [][]float32
	GraspInds []float32 // node index of the object each grasp belongs to

	NodeInds []int
	Parents  [][]int
	Children [][]int

	// Flipped means the image must be mirrored horizontally when read.
	// Box and grasp coordinates are stored already flipped.
	Flipped bool

	// NeedCrop is set by RankRatios when the image's aspect ratio falls
	// outside the range the batch planner will target.
	NeedCrop bool
}
