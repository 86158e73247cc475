package analytics_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moodlens/internal/analytics"
)

func TestDescribe(t *testing.T) {
	t.Run("empty group is all null", func(t *testing.T) {
		s := analytics.Describe(nil)
		assert.Equal(t, 0, s.Count)
		assert.Nil(t, s.Min)
		assert.Nil(t, s.Max)
		assert.Nil(t, s.Avg)
		assert.Nil(t, s.StdDev)
		assert.Nil(t, s.Median)
	})

	t.Run("singleton has zero deviation", func(t *testing.T) {
		s := analytics.Describe([]int{6})
		require.NotNil(t, s.StdDev)
		assert.Equal(t, 0.0, *s.StdDev)
		assert.Equal(t, 6.0, *s.Median)
		assert.Equal(t, 6, *s.Min)
		assert.Equal(t, 6, *s.Max)
	})

	t.Run("even count averages the middle pair", func(t *testing.T) {
		s := analytics.Describe([]int{4, 1, 3, 2})
		assert.Equal(t, 4, s.Count)
		assert.Equal(t, 2.5, *s.Avg)
		assert.Equal(t, 2.5, *s.Median)
		// population deviation: sqrt(1.25)
		assert.Equal(t, 1.12, *s.StdDev)
		assert.Equal(t, 1, *s.Min)
		assert.Equal(t, 4, *s.Max)
	})

	t.Run("odd count takes the middle value", func(t *testing.T) {
		s := analytics.Describe([]int{9, 1, 5})
		assert.Equal(t, 5.0, *s.Median)
		assert.Equal(t, 5.0, *s.Avg)
		assert.Equal(t, 3.27, *s.StdDev)
	})

	t.Run("does not reorder the input", func(t *testing.T) {
		scores := []int{3, 1, 2}
		analytics.Describe(scores)
		assert.Equal(t, []int{3, 1, 2}, scores)
	})
}

func TestMean(t *testing.T) {
	assert.Nil(t, analytics.Mean(nil))
	assert.Equal(t, 6.67, *analytics.Mean([]int{6, 7, 7}))
	assert.Equal(t, -2.0, *analytics.Mean([]int{-2}))
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 33.3, analytics.Percent(1, 3))
	assert.Equal(t, 66.7, analytics.Percent(2, 3))
	assert.Equal(t, 100.0, analytics.Percent(4, 4))
	assert.Equal(t, 0.0, analytics.Percent(0, 0))
	assert.Equal(t, 0.0, analytics.Percent(3, 0))
}

func TestRounding(t *testing.T) {
	assert.Equal(t, 2.35, analytics.Round2(2.345000001))
	assert.Equal(t, 1.0, analytics.Round2(0.999))
	assert.Equal(t, 12.5, analytics.Round1(12.46))
}
