package adapters

import (
	"github.com/de-tools/riskread/pkg/models/api"
	"github.com/de-tools/riskread/pkg/models/domain"
)

func MapAnalysisApiToDomain(a api.Analysis) domain.Analysis {
	res := domain.Analysis{
		ID:                    a.ID,
		FileName:              a.FileName,
		FileType:              domain.FileType(a.FileType),
		FileSize:              a.FileSize,
		FileURL:               a.FileURL,
		Status:                domain.Status(a.Status),
		OverallScore:          a.OverallScore,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
		ProcessingStartedAt:   a.ProcessingStartedAt,
		ProcessingCompletedAt: a.ProcessingCompletedAt,
	}
	if a.RiskLevel != nil {
		res.RiskLevel = domain.RiskLevel(*a.RiskLevel)
	}
	if a.ErrorMessage != nil {
		res.ErrorMessage = *a.ErrorMessage
	}
	return res
}

func MapAnalysisDomainToApi(a domain.Analysis) api.Analysis {
	res := api.Analysis{
		ID:                    a.ID,
		FileName:              a.FileName,
		FileType:              string(a.FileType),
		FileSize:              a.FileSize,
		FileURL:               a.FileURL,
		Status:                string(a.Status),
		OverallScore:          a.OverallScore,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
		ProcessingStartedAt:   a.ProcessingStartedAt,
		ProcessingCompletedAt: a.ProcessingCompletedAt,
	}
	if a.RiskLevel != "" {
		level := string(a.RiskLevel)
		res.RiskLevel = &level
	}
	if a.ErrorMessage != "" {
		msg := a.ErrorMessage
		res.ErrorMessage = &msg
	}
	return res
}

func MapResultApiToDomain(r *api.AnalysisResult) *domain.AnalysisResult {
	if r == nil {
		return nil
	}
	res := &domain.AnalysisResult{
		ID:                r.ID,
		AnalysisID:        r.AnalysisID,
		RelevanceScore:    r.RelevanceScore,
		CompletenessScore: r.CompletenessScore,
		RiskScore:         r.RiskScore,
		ClarityScore:      r.ClarityScore,
		AccuracyScore:     r.AccuracyScore,
		CreatedAt:         r.CreatedAt,
	}
	for _, i := range r.Insights {
		res.Insights = append(res.Insights, domain.Insight{
			Category:   domain.InsightCategory(i.Category),
			Text:       i.Text,
			Confidence: i.Confidence,
		})
	}
	for _, rec := range r.Recommendations {
		res.Recommendations = append(res.Recommendations, domain.Recommendation{
			Priority: domain.Priority(rec.Priority),
			Category: rec.Category,
			Text:     rec.Text,
		})
	}
	for _, h := range r.Highlights {
		res.Highlights = append(res.Highlights, domain.Highlight{
			Page:     h.Page,
			Text:     h.Text,
			Reason:   h.Reason,
			Category: domain.HighlightCategory(h.Category),
		})
	}
	for _, f := range r.ExtractedFields {
		res.ExtractedFields = append(res.ExtractedFields, domain.ExtractedField{
			Name:       f.Name,
			Value:      f.Value,
			Confidence: f.Confidence,
		})
	}
	for _, q := range r.Questions {
		res.Questions = append(res.Questions, domain.Question{
			Text:            q.Text,
			Priority:        domain.QuestionPriority(q.Priority),
			Category:        q.Category,
			SuggestedAction: q.SuggestedAction,
		})
	}
	return res
}

func MapResultDomainToApi(r *domain.AnalysisResult) *api.AnalysisResult {
	if r == nil {
		return nil
	}
	res := &api.AnalysisResult{
		ID:                r.ID,
		AnalysisID:        r.AnalysisID,
		RelevanceScore:    r.RelevanceScore,
		CompletenessScore: r.CompletenessScore,
		RiskScore:         r.RiskScore,
		ClarityScore:      r.ClarityScore,
		AccuracyScore:     r.AccuracyScore,
		Insights:          make([]api.Insight, 0, len(r.Insights)),
		Recommendations:   make([]api.Recommendation, 0, len(r.Recommendations)),
		Highlights:        make([]api.Highlight, 0, len(r.Highlights)),
		ExtractedFields:   make([]api.ExtractedField, 0, len(r.ExtractedFields)),
		Questions:         make([]api.Question, 0, len(r.Questions)),
		CreatedAt:         r.CreatedAt,
	}
	for _, i := range r.Insights {
		res.Insights = append(res.Insights, api.Insight{
			Category:   string(i.Category),
			Text:       i.Text,
			Confidence: i.Confidence,
		})
	}
	for _, rec := range r.Recommendations {
		res.Recommendations = append(res.Recommendations, api.Recommendation{
			Priority: string(rec.Priority),
			Category: rec.Category,
			Text:     rec.Text,
		})
	}
	for _, h := range r.Highlights {
		res.Highlights = append(res.Highlights, api.Highlight{
			Page:     h.Page,
			Text:     h.Text,
			Reason:   h.Reason,
			Category: string(h.Category),
		})
	}
	for _, f := range r.ExtractedFields {
		res.ExtractedFields = append(res.ExtractedFields, api.ExtractedField{
			Name:       f.Name,
			Value:      f.Value,
			Confidence: f.Confidence,
		})
	}
	for _, q := range r.Questions {
		res.Questions = append(res.Questions, api.Question{
			Text:            q.Text,
			Priority:        string(q.Priority),
			Category:        q.Category,
			SuggestedAction: q.SuggestedAction,
		})
	}
	return res
}

func MapAnalysisWithResultsApiToDomain(a api.AnalysisWithResults) domain.AnalysisWithResult {
	return domain.AnalysisWithResult{
		Analysis: MapAnalysisApiToDomain(a.Analysis),
		Result:   MapResultApiToDomain(a.Result),
	}
}

func MapAnalysisWithResultDomainToApi(a domain.AnalysisWithResult) api.AnalysisWithResults {
	return api.AnalysisWithResults{
		Analysis: MapAnalysisDomainToApi(a.Analysis),
		Result:   MapResultDomainToApi(a.Result),
	}
}

func MapListResponseApiToDomain(r api.AnalysisListResponse) domain.ListPage {
	page := domain.ListPage{
		Analyses:   make([]domain.Analysis, 0, len(r.Analyses)),
		Total:      r.Total,
		Page:       r.Page,
		Limit:      r.Limit,
		TotalPages: r.TotalPages,
	}
	for _, a := range r.Analyses {
		page.Analyses = append(page.Analyses, MapAnalysisApiToDomain(a))
	}
	return page
}

func MapListPageDomainToApi(p domain.ListPage) api.AnalysisListResponse {
	res := api.AnalysisListResponse{
		Analyses:   make([]api.Analysis, 0, len(p.Analyses)),
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
	for _, a := range p.Analyses {
		res.Analyses = append(res.Analyses, MapAnalysisDomainToApi(a))
	}
	return res
}

func MapCreateInputDomainToApi(in domain.CreateAnalysisInput) api.CreateAnalysisInput {
	return api.CreateAnalysisInput{
		FileName: in.FileName,
		FileType: string(in.FileType),
		FileSize: in.FileSize,
		FileURL:  in.FileURL,
	}
}

func MapCreateInputApiToDomain(in api.CreateAnalysisInput) domain.CreateAnalysisInput {
	return domain.CreateAnalysisInput{
		FileName: in.FileName,
		FileType: domain.FileType(in.FileType),
		FileSize: in.FileSize,
		FileURL:  in.FileURL,
	}
}

func MapPatchDomainToApi(p domain.AnalysisPatch) api.UpdateAnalysisInput {
	var res api.UpdateAnalysisInput
	if p.Status != nil {
		s := string(*p.Status)
		res.Status = &s
	}
	if p.RiskLevel != nil {
		l := string(*p.RiskLevel)
		res.RiskLevel = &l
	}
	res.OverallScore = p.OverallScore
	res.ErrorMessage = p.ErrorMessage
	return res
}

func MapPatchApiToDomain(p api.UpdateAnalysisInput) domain.AnalysisPatch {
	var res domain.AnalysisPatch
	if p.Status != nil {
		s := domain.Status(*p.Status)
		res.Status = &s
	}
	if p.RiskLevel != nil {
		l := domain.RiskLevel(*p.RiskLevel)
		res.RiskLevel = &l
	}
	res.OverallScore = p.OverallScore
	res.ErrorMessage = p.ErrorMessage
	return res
}
