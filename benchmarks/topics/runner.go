// ABOUTME: Benchmark runner: resolves topics for every labeled query and scores them
// ABOUTME: Uses the same extractor and resolution order as a live coach turn
package topics

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/harper/nutricoach/internal/core"
	"github.com/harper/nutricoach/internal/logging"
	"github.com/harper/nutricoach/internal/models"
)

// Status values for a run
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
)

// CaseResult is the outcome for one query
type CaseResult struct {
	ID       string              `json:"id"`
	Query    string              `json:"query"`
	Expected []models.TopicScope `json:"expected"`
	Got      []models.TopicScope `json:"got"`
	Exact    bool                `json:"exact"`
}

// Report is the outcome of a full run
type Report struct {
	Timestamp  string           `json:"timestamp"`
	TotalCases int              `json:"total_cases"`
	ExactMatch float64          `json:"exact_match"`
	Micro      Score            `json:"micro"`
	PerTopic   map[string]Score `json:"per_topic"`
	MinF1      float64          `json:"min_f1"`
	Status     string           `json:"status"`
	Cases      []CaseResult     `json:"cases"`
}

// Runner scores topic resolution against labeled cases
type Runner struct {
	extractor *core.TopicExtractor
	minF1     float64
	logger    *zap.Logger
}

// NewRunner builds a runner over keywords (nil means the defaults). A run passes
// when its micro-averaged F1 reaches minF1.
func NewRunner(keywords core.KeywordMap, minF1 float64, logger *zap.Logger) *Runner {
	return &Runner{
		extractor: core.NewTopicExtractor(keywords),
		minF1:     minF1,
		logger:    logging.OrNop(logger),
	}
}

// Run scores every case. Cases with invalid labels fail the whole run.
func (r *Runner) Run(cases []Case) (*Report, error) {
	report := &Report{
		Timestamp:  time.Now().Format(time.RFC3339),
		TotalCases: len(cases),
		PerTopic:   make(map[string]Score),
		MinF1:      r.minF1,
		Cases:      make([]CaseResult, 0, len(cases)),
	}

	perTopic := make(map[models.TopicScope]*Counts)
	for _, t := range models.AllTopics() {
		perTopic[t] = &Counts{}
	}
	var micro Counts
	exact := 0

	for _, c := range cases {
		expected, err := c.ExpectedTopics()
		if err != nil {
			return nil, err
		}
		got := r.extractor.Extract(c.Query).Resolve()

		for topic, counts := range Compare(expected, got) {
			perTopic[topic].Add(counts)
			micro.Add(counts)
		}

		result := CaseResult{ID: c.ID, Query: c.Query, Expected: expected, Got: got, Exact: sameSet(expected, got)}
		if result.Exact {
			exact++
		} else {
			r.logger.Debug("topic mismatch",
				zap.String("case", c.ID),
				zap.Strings("expected", models.TopicStrings(expected)),
				zap.Strings("got", models.TopicStrings(got)),
			)
		}
		report.Cases = append(report.Cases, result)
	}

	for topic, counts := range perTopic {
		report.PerTopic[string(topic)] = scoreOf(*counts)
	}
	report.Micro = scoreOf(micro)
	if len(cases) > 0 {
		report.ExactMatch = float64(exact) / float64(len(cases))
	}

	report.Status = StatusFail
	if report.Micro.F1 >= r.minF1 {
		report.Status = StatusPass
	}
	return report, nil
}

// ExportResults writes the report as indented JSON
func ExportResults(report *Report, outputPath string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}
