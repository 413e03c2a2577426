package scoring

import (
	"math"

	"github.com/de-tools/riskread/pkg/models/domain"
)

type Tone string

const (
	ToneGreen  Tone = "green"
	ToneYellow Tone = "yellow"
	ToneRed    Tone = "red"
)

type Trend string

const (
	TrendUp      Trend = "up"
	TrendNeutral Trend = "neutral"
	TrendDown    Trend = "down"
)

type MetricInfo struct {
	Metric      Metric
	Name        string
	Description string
}

var metricInfo = map[Metric]MetricInfo{
	Relevance:    {Relevance, "Relevance", "How well the document addresses the intended purpose and audience"},
	Completeness: {Completeness, "Completeness", "Extent to which all necessary information is included"},
	Risk:         {Risk, "Risk Assessment", "Level of potential risks and issues identified"},
	Clarity:      {Clarity, "Clarity", "How clear and understandable the content is"},
	Accuracy:     {Accuracy, "Accuracy", "Reliability and correctness of the information presented"},
}

func Info(m Metric) MetricInfo {
	return metricInfo[m]
}

// WeightedScore is the overall score shown on screen and in exported reports.
func WeightedScore(r domain.AnalysisResult) int {
	return int(math.Round(DefaultWeights.Score(r)))
}

// RiskLevelFor maps an overall score to the risk level the backend assigns.
func RiskLevelFor(score float64) domain.RiskLevel {
	switch {
	case score >= 75:
		return domain.RiskLow
	case score >= 50:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

func Label(score float64) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Needs Improvement"
	}
}

func ToneOf(score float64) Tone {
	switch {
	case score >= 80:
		return ToneGreen
	case score >= 60:
		return ToneYellow
	default:
		return ToneRed
	}
}

// TrendOf uses inverted thresholds for risk, where a low score is good.
func TrendOf(m Metric, score float64) Trend {
	if m == Risk {
		switch {
		case score <= 25:
			return TrendUp
		case score <= 50:
			return TrendNeutral
		default:
			return TrendDown
		}
	}
	switch {
	case score >= 75:
		return TrendUp
	case score >= 50:
		return TrendNeutral
	default:
		return TrendDown
	}
}

type Summary struct {
	Average int
	Highest float64
	Lowest  float64
}

func Summarize(r domain.AnalysisResult) Summary {
	s := Summary{Highest: math.Inf(-1), Lowest: math.Inf(1)}
	total := 0.0
	for _, m := range Metrics {
		v := Value(r, m)
		total += v
		s.Highest = math.Max(s.Highest, v)
		s.Lowest = math.Min(s.Lowest, v)
	}
	s.Average = int(math.Round(total / float64(len(Metrics))))
	return s
}
