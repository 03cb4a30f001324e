package engine

import (
	"sort"

	"github.com/buzzline/streaming-insights/internal/window"
)

// NoDataCategory is the sentinel TopN returns while the window is empty.
const NoDataCategory = "(none)"

// CategoryCount is one leaderboard row.
type CategoryCount struct {
	Category string
	Count    int
}

// FrequencyWindow counts category labels over a bounded window of the most
// recent observations. Counts always reflect the window contents exactly.
type FrequencyWindow struct {
	win *window.Window[string]
}

// NewFrequencyWindow returns a frequency counter over the last size labels.
func NewFrequencyWindow(size int) *FrequencyWindow {
	return &FrequencyWindow{win: window.New[string](size)}
}

// Observe records one category label, evicting the oldest when full.
func (f *FrequencyWindow) Observe(category string) {
	f.win.Push(category)
}

// Len returns the number of labels currently in the window.
func (f *FrequencyWindow) Len() int { return f.win.Len() }

// TopN returns at most n categories ordered by descending count. Ties keep
// the order in which the category first appears in the current window
// contents, so the result is deterministic. An empty window yields a single
// NoDataCategory row with count zero.
func (f *FrequencyWindow) TopN(n int) []CategoryCount {
	labels := f.win.Items()
	if len(labels) == 0 || n < 1 {
		return []CategoryCount{{Category: NoDataCategory}}
	}

	counts := make(map[string]int, len(labels))
	order := make([]string, 0, len(labels))
	for _, label := range labels {
		if _, seen := counts[label]; !seen {
			order = append(order, label)
		}
		counts[label]++
	}

	out := make([]CategoryCount, len(order))
	for i, label := range order {
		out[i] = CategoryCount{Category: label, Count: counts[label]}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
