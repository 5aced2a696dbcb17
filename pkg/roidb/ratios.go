package roidb

import (
	"gonum.org/v1/gonum/floats"
)

// Aspect ratios outside [RatioLowest, RatioHighest] are clamped, and the
// record is marked NeedCrop so the loader trims the oversized dimension.
const (
	RatioLowest  = 0.5
	RatioHighest = 2.0
)

// RankRatios computes the width/height ratio of every record, clamped into
// [RatioLowest, RatioHighest], and returns the ratios in ascending order
// together with the permutation that sorts them (ratioIndex[k] is the record
// index holding the k-th smallest ratio). Sorting by ratio keeps each batch
// of consecutive samples close in shape, which is what makes the per-batch
// target ratio cheap to satisfy.
//
// As a side effect, NeedCrop is set on every record whose ratio was clamped.
func RankRatios(db []*Record) ([]float64, []int) {
	ratios := make([]float64, len(db))
	index := make([]int, len(db))
	for i, rec := range db {
		ratio := float64(rec.Width) / float64(rec.Height)
		if ratio > RatioHighest {
			rec.NeedCrop = true
			ratio = RatioHighest
		} else if ratio < RatioLowest {
			rec.NeedCrop = true
			ratio = RatioLowest
		} else {
			rec.NeedCrop = false
		}
		ratios[i] = ratio
	}
	floats.Argsort(ratios, index)
	return ratios, index
}
