package loader

// BatchRatioPlan picks one target aspect ratio per sample, such that all
// samples inside a batch of batchSize consecutive positions share the same
// target. ratioList must be sorted ascending (see roidb.RankRatios); the
// last batch may be shorter.
//
// Per batch: if even the rightmost (largest) ratio is below 1 the whole
// batch is tall, so the leftmost ratio wins and the taller images get
// cropped down to it. Symmetrically, an all-wide batch takes the rightmost
// ratio. A batch straddling 1 is forced square.
//
// The plan depends only on the inputs, so recomputing it for the same
// ordering yields the same targets on every epoch.
func BatchRatioPlan(ratioList []float64, batchSize int) []float64 {
	plan := make([]float64, len(ratioList))
	for left := 0; left < len(ratioList); left += batchSize {
		right := min(left+batchSize-1, len(ratioList)-1)
		var target float64
		switch {
		case ratioList[right] < 1:
			target = ratioList[left]
		case ratioList[left] > 1:
			target = ratioList[right]
		default:
			target = 1
		}
		for i := left; i <= right; i++ {
			plan[i] = target
		}
	}
	return plan
}
