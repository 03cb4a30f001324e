package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopNOrdering(t *testing.T) {
	f := NewFrequencyWindow(10)
	for _, c := range []string{"a", "b", "a", "c", "b", "a"} {
		f.Observe(c)
	}
	assert.Equal(t, []CategoryCount{{"a", 3}, {"b", 2}}, f.TopN(2))
}

func TestTopNTieBreakByFirstSeenInWindow(t *testing.T) {
	f := NewFrequencyWindow(10)
	for _, c := range []string{"x", "y", "y", "x"} {
		f.Observe(c)
	}
	// Equal counts: x appeared first in the current window contents.
	assert.Equal(t, []CategoryCount{{"x", 2}, {"y", 2}}, f.TopN(5))
}

func TestTopNTieBreakFollowsEviction(t *testing.T) {
	f := NewFrequencyWindow(3)
	for _, c := range []string{"x", "y", "x", "y"} {
		f.Observe(c)
	}
	// Window now holds [y, x, y]: y is first-seen within current contents.
	assert.Equal(t, []CategoryCount{{"y", 2}, {"x", 1}}, f.TopN(5))
}

func TestTopNEmptyWindowSentinel(t *testing.T) {
	f := NewFrequencyWindow(5)
	assert.Equal(t, []CategoryCount{{NoDataCategory, 0}}, f.TopN(3))
}

func TestFrequencyCountsMatchWindowLength(t *testing.T) {
	f := NewFrequencyWindow(4)
	labels := []string{"a", "b", "a", "c", "c", "c", "b", "a", "a"}
	for _, c := range labels {
		f.Observe(c)
		total := 0
		for _, row := range f.TopN(100) {
			total += row.Count
		}
		assert.Equal(t, f.Len(), total)
	}
}
