package roidb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRankRatios(t *testing.T) {
	db := []*Record{
		{Width: 300, Height: 100}, // ratio 3, clamped to 2
		{Width: 100, Height: 300}, // ratio 1/3, clamped to 0.5
		{Width: 150, Height: 100}, // ratio 1.5, kept
	}
	ratios, index := RankRatios(db)
	require.Equal(t, []float64{0.5, 1.5, 2}, ratios)
	require.Equal(t, []int{1, 2, 0}, index)
	require.True(t, db[0].NeedCrop)
	require.True(t, db[1].NeedCrop)
	require.False(t, db[2].NeedCrop)
}

func TestRankRatiosStable(t *testing.T) {
	db := []*Record{
		{Width: 100, Height: 100},
		{Width: 200, Height: 100},
		{Width: 120, Height: 100},
	}
	r1, i1 := RankRatios(db)
	r2, i2 := RankRatios(db)
	require.Equal(t, r1, r2)
	require.Equal(t, i1, i2)
}
