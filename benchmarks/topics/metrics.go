// ABOUTME: Precision, recall and F1 for resolved topic sets
// ABOUTME: Per-topic counts plus micro-averaged totals across all cases
package topics

import (
	"github.com/harper/nutricoach/internal/models"
)

// Counts tallies one topic's (or the whole run's) confusion counts
type Counts struct {
	TruePositives  int `json:"true_positives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
}

// Add accumulates other into c
func (c *Counts) Add(other Counts) {
	c.TruePositives += other.TruePositives
	c.FalsePositives += other.FalsePositives
	c.FalseNegatives += other.FalseNegatives
}

// Precision is 1 when nothing was predicted
func (c Counts) Precision() float64 {
	predicted := c.TruePositives + c.FalsePositives
	if predicted == 0 {
		return 1
	}
	return float64(c.TruePositives) / float64(predicted)
}

// Recall is 1 when nothing was expected
func (c Counts) Recall() float64 {
	expected := c.TruePositives + c.FalseNegatives
	if expected == 0 {
		return 1
	}
	return float64(c.TruePositives) / float64(expected)
}

// F1 is the harmonic mean of precision and recall
func (c Counts) F1() float64 {
	p, r := c.Precision(), c.Recall()
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// Score is Counts with the derived ratios, for export
type Score struct {
	Counts
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

func scoreOf(c Counts) Score {
	return Score{Counts: c, Precision: c.Precision(), Recall: c.Recall(), F1: c.F1()}
}

// Compare scores one case, returning counts keyed by topic
func Compare(expected, got []models.TopicScope) map[models.TopicScope]Counts {
	want := make(map[models.TopicScope]bool, len(expected))
	for _, t := range expected {
		want[t] = true
	}
	have := make(map[models.TopicScope]bool, len(got))
	for _, t := range got {
		have[t] = true
	}

	out := make(map[models.TopicScope]Counts)
	for _, t := range models.AllTopics() {
		var c Counts
		switch {
		case want[t] && have[t]:
			c.TruePositives = 1
		case have[t]:
			c.FalsePositives = 1
		case want[t]:
			c.FalseNegatives = 1
		default:
			continue
		}
		out[t] = c
	}
	return out
}

// sameSet reports whether a and b hold the same topics regardless of order
func sameSet(a, b []models.TopicScope) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[models.TopicScope]bool, len(a))
	for _, t := range a {
		seen[t] = true
	}
	for _, t := range b {
		if !seen[t] {
			return false
		}
	}
	return true
}
