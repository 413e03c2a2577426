// Package scoring holds the score weighting shared by every place that shows
// or exports an overall score.
package scoring

import (
	"fmt"

	"github.com/de-tools/riskread/pkg/models/domain"
)

type Metric string

const (
	Relevance    Metric = "relevance"
	Completeness Metric = "completeness"
	Risk         Metric = "risk"
	Clarity      Metric = "clarity"
	Accuracy     Metric = "accuracy"
)

// Metrics lists the sub-scores in display order.
var Metrics = []Metric{Relevance, Completeness, Risk, Clarity, Accuracy}

// Weights are stored in whole percentage points so the total is exact.
type Weights struct {
	Version      string
	Relevance    int
	Completeness int
	Risk         int
	Clarity      int
	Accuracy     int
}

// DefaultWeights matches the weighting the backend uses for overall_score.
var DefaultWeights = Weights{
	Version:      "2024-01",
	Relevance:    25,
	Completeness: 20,
	Risk:         25,
	Clarity:      15,
	Accuracy:     15,
}

func (w Weights) Total() int {
	return w.Relevance + w.Completeness + w.Risk + w.Clarity + w.Accuracy
}

// Sum returns the weights as fractions of one.
func (w Weights) Sum() float64 {
	return float64(w.Total()) / 100
}

func (w Weights) Validate() error {
	for _, m := range Metrics {
		if w.Percent(m) < 0 {
			return fmt.Errorf("weight for %s is negative", m)
		}
	}
	if w.Total() != 100 {
		return fmt.Errorf("weights %s sum to %d%%, want 100%%", w.Version, w.Total())
	}
	return nil
}

func (w Weights) Percent(m Metric) int {
	switch m {
	case Relevance:
		return w.Relevance
	case Completeness:
		return w.Completeness
	case Risk:
		return w.Risk
	case Clarity:
		return w.Clarity
	case Accuracy:
		return w.Accuracy
	default:
		return 0
	}
}

func (w Weights) Fraction(m Metric) float64 {
	return float64(w.Percent(m)) / 100
}

// Score returns the unrounded weighted average of the result's sub-scores.
func (w Weights) Score(r domain.AnalysisResult) float64 {
	total := 0.0
	for _, m := range Metrics {
		total += float64(w.Percent(m)) * Value(r, m)
	}
	return total / 100
}

func Value(r domain.AnalysisResult, m Metric) float64 {
	switch m {
	case Relevance:
		return r.RelevanceScore
	case Completeness:
		return r.CompletenessScore
	case Risk:
		return r.RiskScore
	case Clarity:
		return r.ClarityScore
	case Accuracy:
		return r.AccuracyScore
	default:
		return 0
	}
}
