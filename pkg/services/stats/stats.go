package stats

import (
	"context"
	"math"

	"github.com/de-tools/riskread/pkg/models/domain"
)

// FetchLimit is the page size used to pull every analysis for the summary.
const FetchLimit = 1000

type Lister interface {
	List(ctx context.Context, query domain.ListQuery) (domain.ListPage, error)
}

func Load(ctx context.Context, api Lister) (domain.Stats, error) {
	page, err := api.List(ctx, domain.ListQuery{Page: 1, Limit: FetchLimit})
	if err != nil {
		return domain.Stats{}, err
	}
	return Summarize(page.Analyses), nil
}

// Summarize counts analyses per status and risk level. AvgScore only covers
// analyses that have a score.
func Summarize(analyses []domain.Analysis) domain.Stats {
	s := domain.Stats{Total: len(analyses)}

	var sum float64
	var scored int
	for _, a := range analyses {
		switch a.Status {
		case domain.StatusCompleted:
			s.Completed++
		case domain.StatusFailed:
			s.Failed++
		case domain.StatusProcessing:
			s.Processing++
		case domain.StatusPending:
			s.Pending++
		}

		switch a.RiskLevel {
		case domain.RiskLow:
			s.RiskLevels.Low++
		case domain.RiskMedium:
			s.RiskLevels.Medium++
		case domain.RiskHigh:
			s.RiskLevels.High++
		}

		if a.OverallScore != nil {
			sum += *a.OverallScore
			scored++
		}
	}

	if scored > 0 {
		s.AvgScore = math.Round(sum/float64(scored)*100) / 100
	}
	return s
}
