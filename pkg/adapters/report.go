package adapters

import (
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/scoring"
)

// FormatFileSize renders a byte count with 1024-based units, e.g. "1.5 MB".
func FormatFileSize(size int64) string {
	if size <= 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(size)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	v := float64(size) / math.Pow(1024, float64(i))
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	return s + " " + units[i]
}

// Capitalize upper-cases the first letter of an enum value for display. A
// Caser keeps state between calls, so each call gets its own.
func Capitalize(s string) string {
	return cases.Title(language.English).String(s)
}

// MapAnalysisToReport builds the text report for one analysis. A nil result
// produces only the document section.
func MapAnalysisToReport(a domain.Analysis, r *domain.AnalysisResult, badges []string) *domain.Report {
	report := &domain.Report{
		Title:    a.FileName,
		Subtitle: fmt.Sprintf("%s | %s | %s", strings.ToUpper(string(a.FileType)), FormatFileSize(a.FileSize), a.CreatedAt.Format("Jan 2, 2006 15:04")),
		Badges:   append([]string{Capitalize(string(a.Status))}, badges...),
	}

	doc := domain.ReportSection{
		Title: "Document Summary",
		Summary: map[string]interface{}{
			"Status": Capitalize(string(a.Status)),
		},
	}
	if a.RiskLevel != "" {
		doc.Summary["Risk Level"] = Capitalize(string(a.RiskLevel))
	}
	if a.ErrorMessage != "" {
		doc.Summary["Error"] = a.ErrorMessage
	}
	if r != nil {
		score := scoring.WeightedScore(*r)
		doc.Summary["Overall Score"] = fmt.Sprintf("%d/100 (%s)", score, scoring.Label(float64(score)))
	} else if a.OverallScore != nil {
		doc.Summary["Overall Score"] = fmt.Sprintf("%.0f/100", *a.OverallScore)
	}
	report.Sections = append(report.Sections, doc)

	if r == nil {
		return report
	}

	report.Sections = append(report.Sections,
		mapScoreSection(*r),
		mapInsightSection(r.Insights),
		mapRecommendationSection(r.Recommendations),
		mapHighlightSection(r.Highlights),
		mapFieldSection(r.ExtractedFields),
		mapQuestionSection(r.Questions),
	)
	return report
}

func mapScoreSection(r domain.AnalysisResult) domain.ReportSection {
	sum := scoring.Summarize(r)
	section := domain.ReportSection{
		Title: "Score Breakdown",
		Summary: map[string]interface{}{
			"Average": sum.Average,
			"Highest": sum.Highest,
			"Lowest":  sum.Lowest,
		},
	}
	for _, m := range scoring.Metrics {
		info := scoring.Info(m)
		v := scoring.Value(r, m)
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        fmt.Sprintf("%s (%d%%)", info.Name, scoring.DefaultWeights.Percent(m)),
			Value:       v,
			Unit:        "/100",
			Description: fmt.Sprintf("%s, trend %s", scoring.Label(v), scoring.TrendOf(m, v)),
		})
	}
	return section
}

func mapInsightSection(insights []domain.Insight) domain.ReportSection {
	section := domain.ReportSection{
		Title:   "Key Insights",
		Summary: map[string]interface{}{"Count": len(insights)},
	}
	for _, i := range insights {
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        Capitalize(string(i.Category)),
			Value:       fmt.Sprintf("%.0f%%", i.Confidence*100),
			Unit:        "confidence",
			Description: i.Text,
		})
	}
	return section
}

func mapRecommendationSection(recs []domain.Recommendation) domain.ReportSection {
	section := domain.ReportSection{
		Title:   "Recommendations",
		Summary: map[string]interface{}{"Count": len(recs)},
	}
	for _, rec := range recs {
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        Capitalize(string(rec.Priority)) + " Priority",
			Value:       rec.Category,
			Description: rec.Text,
		})
	}
	return section
}

func mapHighlightSection(highlights []domain.Highlight) domain.ReportSection {
	section := domain.ReportSection{
		Title:   "Key Highlights",
		Summary: map[string]interface{}{"Count": len(highlights)},
	}
	for _, h := range highlights {
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        fmt.Sprintf("Page %d", h.Page),
			Value:       Capitalize(string(h.Category)),
			Description: fmt.Sprintf("%q Reason: %s", h.Text, h.Reason),
		})
	}
	return section
}

func mapFieldSection(fields []domain.ExtractedField) domain.ReportSection {
	section := domain.ReportSection{
		Title:   "Extracted Fields",
		Summary: map[string]interface{}{"Count": len(fields)},
	}
	for _, f := range fields {
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        f.Name,
			Value:       f.Value,
			Description: fmt.Sprintf("confidence %.0f%%", f.Confidence),
		})
	}
	return section
}

func mapQuestionSection(questions []domain.Question) domain.ReportSection {
	section := domain.ReportSection{
		Title:   "Questions & Clarifications",
		Summary: map[string]interface{}{"Count": len(questions)},
	}
	for i, q := range questions {
		desc := fmt.Sprintf("Priority: %s | Category: %s", Capitalize(string(q.Priority)), q.Category)
		if q.SuggestedAction != "" {
			desc += " | Action: " + q.SuggestedAction
		}
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        fmt.Sprintf("Q%d", i+1),
			Value:       q.Text,
			Description: desc,
		})
	}
	return section
}

func scoreText(score *float64) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%.0f", *score)
}

// MapListPageToReport renders one page of analyses as a single table section.
func MapListPageToReport(title string, page domain.ListPage) *domain.Report {
	report := &domain.Report{
		Title:    title,
		Subtitle: fmt.Sprintf("Page %d of %d | %d total", page.Page, page.TotalPages, page.Total),
	}
	report.Sections = append(report.Sections, mapAnalysesSection("Analyses", page.Analyses))
	return report
}

func MapRecentToReport(analyses []domain.Analysis) *domain.Report {
	return &domain.Report{
		Title:    "Recent Analyses",
		Sections: []domain.ReportSection{mapAnalysesSection("Latest", analyses)},
	}
}

func mapAnalysesSection(title string, analyses []domain.Analysis) domain.ReportSection {
	section := domain.ReportSection{
		Title:   title,
		Summary: map[string]interface{}{"Count": len(analyses)},
	}
	for _, a := range analyses {
		risk := "-"
		if a.RiskLevel != "" {
			risk = Capitalize(string(a.RiskLevel))
		}
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        a.FileName,
			Value:       Capitalize(string(a.Status)),
			Unit:        scoreText(a.OverallScore),
			Description: fmt.Sprintf("%s | risk %s | %s", a.ID, risk, a.CreatedAt.Format("2006-01-02 15:04")),
		})
	}
	return section
}

func MapStatsToReport(s domain.Stats) *domain.Report {
	return &domain.Report{
		Title: "Analysis Statistics",
		Sections: []domain.ReportSection{
			{
				Title: "Status",
				Details: []domain.ReportDetail{
					{Name: "Total", Value: s.Total},
					{Name: "Completed", Value: s.Completed},
					{Name: "Processing", Value: s.Processing},
					{Name: "Pending", Value: s.Pending},
					{Name: "Failed", Value: s.Failed},
					{Name: "Average Score", Value: fmt.Sprintf("%.2f", s.AvgScore), Unit: "/100"},
				},
			},
			{
				Title: "Risk Levels",
				Details: []domain.ReportDetail{
					{Name: "Low", Value: s.RiskLevels.Low},
					{Name: "Medium", Value: s.RiskLevels.Medium},
					{Name: "High", Value: s.RiskLevels.High},
				},
			},
		},
	}
}

// MapCacheToReport lists cached entries, flagging the most recent one.
func MapCacheToReport(entries []domain.CachedAnalysis, latest string) *domain.Report {
	section := domain.ReportSection{
		Title:   "Cached Analyses",
		Summary: map[string]interface{}{"Count": len(entries)},
	}
	for _, e := range entries {
		desc := fmt.Sprintf("cached %s | used %s", e.CachedAt.Format("2006-01-02 15:04"), e.AccessedAt.Format("2006-01-02 15:04"))
		if e.Analysis.ID == latest {
			desc += " | latest"
		}
		section.Details = append(section.Details, domain.ReportDetail{
			Name:        e.Analysis.ID,
			Value:       e.Analysis.FileName,
			Unit:        Capitalize(string(e.Analysis.Status)),
			Description: desc,
		})
	}
	return &domain.Report{Title: "Local Cache", Sections: []domain.ReportSection{section}}
}
