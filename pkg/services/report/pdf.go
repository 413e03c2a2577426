package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/de-tools/riskread/pkg/adapters"
	"github.com/de-tools/riskread/pkg/models/domain"
	"github.com/de-tools/riskread/pkg/scoring"
)

const (
	ProductName = "RiskRead AI"
	FooterTitle = "RiskRead AI - Document Risk Analysis Report"
	NotReady    = "Analysis results are not yet available."

	margin       = 20.0
	headerHeight = 60.0
	footerGap    = 25.0
	dateLayout   = "January 2, 2006, 03:04 PM"

	shortDisclaimer = "Important: This report is generated automatically by an AI system and may contain errors, omissions, or misinterpretations. It is provided for informational purposes only and does not constitute legal, compliance, financial, or risk advice. You remain responsible for independently reviewing all documents and making final decisions based on appropriate professional judgment."
	disclaimer      = "This report is generated automatically by an AI system and may contain errors, omissions, or misinterpretations. It is provided for informational purposes only and does not constitute legal, compliance, financial, or risk advice. You remain responsible for independently reviewing all documents, validating findings, and making final decisions based on appropriate professional judgment."
	humanReview     = "Do not rely on this report as a substitute for human review by qualified professionals."
)

type rgb [3]int

var (
	colorPrimary = rgb{0, 171, 141}
	colorDark    = rgb{30, 30, 30}
	colorText    = rgb{55, 55, 55}
	colorMuted   = rgb{120, 120, 120}
	colorLight   = rgb{245, 245, 245}
	colorWhite   = rgb{255, 255, 255}
	colorRed     = rgb{220, 53, 69}
	colorGreen   = rgb{40, 167, 69}
	colorYellow  = rgb{255, 193, 7}
	colorBlue    = rgb{0, 123, 255}
	colorOrange  = rgb{255, 152, 0}
)

func riskColor(level domain.RiskLevel) rgb {
	switch level {
	case domain.RiskLow:
		return colorGreen
	case domain.RiskMedium:
		return colorYellow
	case domain.RiskHigh:
		return colorRed
	default:
		return colorMuted
	}
}

func toneColor(score float64) rgb {
	switch scoring.ToneOf(score) {
	case scoring.ToneGreen:
		return colorGreen
	case scoring.ToneYellow:
		return colorYellow
	default:
		return colorRed
	}
}

// FileName is the download name for an analysis report.
func FileName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return fmt.Sprintf("riskread_%s_analysis.pdf", base)
}

type Option func(*Generator)

func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		g.now = now
	}
}

// WithoutCompression leaves page streams readable, which tests rely on.
func WithoutCompression() Option {
	return func(g *Generator) {
		g.compress = false
	}
}

type Generator struct {
	now      func() time.Time
	compress bool
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{now: time.Now, compress: true}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Render writes the report for a to w. A nil result renders the document
// summary followed by a not-ready notice.
func (g *Generator) Render(w io.Writer, a domain.Analysis, r *domain.AnalysisResult) error {
	d := newDocument(g.compress)
	d.header(a, g.now())
	d.documentSummary(a)

	if r == nil {
		d.notReady()
	} else {
		d.scoreBreakdown(*r)
		d.insights(r.Insights)
		d.recommendations(r.Recommendations)
		d.highlights(r.Highlights)
		d.fields(r.ExtractedFields)
		d.questions(r.Questions)
		d.disclaimer()
	}

	if err := d.pdf.Output(w); err != nil {
		return domain.NewError(domain.KindGeneration, "failed to render report", err)
	}
	return nil
}

type document struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	width  float64
	height float64
	y      float64
}

func newDocument(compress bool) *document {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(compress)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AliasNbPages("")
	pdf.SetTitle(ProductName+" Report", true)
	pdf.SetCreator(ProductName, true)

	d := &document{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	d.width, d.height = pdf.GetPageSize()
	pdf.SetFooterFunc(d.footer)
	pdf.AddPage()
	return d
}

func (d *document) contentWidth() float64 {
	return d.width - 2*margin
}

func (d *document) footer() {
	d.pdf.SetDrawColor(220, 220, 220)
	d.pdf.SetLineWidth(0.2)
	d.pdf.Line(margin, d.height-14, d.width-margin, d.height-14)

	d.font("", 8, colorMuted)
	d.pdf.Text(margin, d.height-10, FooterTitle)
	label := fmt.Sprintf("Page %d of {nb}", d.pdf.PageNo())
	d.pdf.Text(d.width-margin-d.pdf.GetStringWidth(label), d.height-10, label)
}

func (d *document) breakIfNeeded(needed float64) {
	if d.y+needed > d.height-footerGap {
		d.pdf.AddPage()
		d.y = margin
	}
}

func (d *document) font(style string, size float64, c rgb) {
	d.pdf.SetFont("Helvetica", style, size)
	d.pdf.SetTextColor(c[0], c[1], c[2])
}

func (d *document) fill(c rgb) {
	d.pdf.SetFillColor(c[0], c[1], c[2])
}

// lines wraps text with the current font. The result is already translated
// to the font code page.
func (d *document) lines(text string, width float64) []string {
	raw := d.pdf.SplitLines([]byte(d.tr(text)), width)
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		out = append(out, string(l))
	}
	return out
}

func (d *document) text(x, y float64, s string) {
	d.pdf.Text(x, y, d.tr(s))
}

func (d *document) textRight(right, y float64, s string) {
	s = d.tr(s)
	d.pdf.Text(right-d.pdf.GetStringWidth(s), y, s)
}

func (d *document) textCenter(center, y float64, s string) {
	s = d.tr(s)
	d.pdf.Text(center-d.pdf.GetStringWidth(s)/2, y, s)
}

func (d *document) header(a domain.Analysis, now time.Time) {
	d.fill(colorPrimary)
	d.pdf.Rect(0, 0, d.width, headerHeight, "F")

	d.font("B", 24, colorWhite)
	d.text(margin, 22, ProductName)
	d.font("", 12, colorWhite)
	d.text(margin, 32, "Document Risk Analysis Report")
	d.font("B", 10, colorWhite)
	d.text(margin, 46, a.FileName)
	d.font("", 8, colorWhite)
	d.text(margin, 54, "Generated on "+now.Format(dateLayout))

	if a.OverallScore != nil {
		cx, cy := d.width-margin-15, 30.0
		d.fill(colorWhite)
		d.pdf.Circle(cx, cy, 18, "F")
		d.font("B", 20, riskColor(a.RiskLevel))
		d.textCenter(cx, cy-1, fmt.Sprintf("%.0f", *a.OverallScore))
		d.font("", 6, colorDark)
		d.textCenter(cx, cy+5, "Overall")
		d.textCenter(cx, cy+9, "Score")
	}

	d.y = headerHeight + 10
}

func (d *document) sectionTitle(title string) {
	d.breakIfNeeded(16)
	d.y += 6
	d.font("B", 14, colorPrimary)
	d.text(margin, d.y, title)
	d.y += 2
	d.pdf.SetDrawColor(colorPrimary[0], colorPrimary[1], colorPrimary[2])
	d.pdf.SetLineWidth(0.5)
	d.pdf.Line(margin, d.y, margin+d.contentWidth(), d.y)
	d.y += 8
}

// keyValueHeight is the vertical space keyValue takes for the same arguments.
func (d *document) keyValueHeight(key, value string, width float64) float64 {
	d.font("B", 9, colorText)
	keyWidth := d.pdf.GetStringWidth(d.tr(key + "  "))
	d.font("", 9, colorDark)
	return float64(len(d.lines(value, width-keyWidth)))*4.5 + 2
}

// keyValue draws at y and never breaks the page; the caller reserves the room.
func (d *document) keyValue(key, value string, x, y, width float64) {
	d.font("B", 9, colorText)
	d.text(x, y, key)
	keyWidth := d.pdf.GetStringWidth(d.tr(key + "  "))

	d.font("", 9, colorDark)
	for i, l := range d.lines(value, width-keyWidth) {
		d.pdf.Text(x+keyWidth, y+float64(i)*4.5, l)
	}
}

func (d *document) wrapped(text string, x, size float64, c rgb, width, step float64) {
	d.font("", size, c)
	for _, l := range d.lines(text, width) {
		d.breakIfNeeded(5)
		d.pdf.Text(x, d.y, l)
		d.y += step
	}
}

func (d *document) documentSummary(a domain.Analysis) {
	d.sectionTitle("Document Summary")

	half := d.contentWidth() / 2
	left, right := margin, margin+half
	pairs := [][2]string{
		{"File Name:", a.FileName},
		{"File Type:", strings.ToUpper(string(a.FileType))},
		{"File Size:", adapters.FormatFileSize(a.FileSize)},
		{"Status:", adapters.Capitalize(string(a.Status))},
		{"Created:", a.CreatedAt.Format(dateLayout)},
	}
	if a.RiskLevel != "" {
		pairs = append(pairs, [2]string{"Risk Level:", adapters.Capitalize(string(a.RiskLevel))})
	}

	// Two columns; a row moves to the next page as a whole and advances by
	// its taller cell.
	cell := half - 5
	for i := 0; i < len(pairs); i += 2 {
		row := pairs[i:min(i+2, len(pairs))]
		height := 0.0
		for _, p := range row {
			height = max(height, d.keyValueHeight(p[0], p[1], cell))
		}
		d.breakIfNeeded(max(height, 8))

		for j, p := range row {
			x := left
			if j == 1 {
				x = right
			}
			d.keyValue(p[0], p[1], x, d.y, cell)
		}
		d.y += height
	}
}

func (d *document) notReady() {
	d.y += 10
	d.font("I", 12, colorMuted)
	d.text(margin, d.y, NotReady)
	d.y += 8
	d.wrapped(shortDisclaimer, margin, 8, colorMuted, d.contentWidth(), 4)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (d *document) scoreBreakdown(r domain.AnalysisResult) {
	d.sectionTitle("Score Breakdown")

	summary := scoring.Summarize(r)
	d.breakIfNeeded(20)
	d.fill(colorLight)
	d.pdf.RoundedRect(margin, d.y, d.contentWidth(), 16, 3, "1234", "F")
	d.font("B", 11, colorDark)
	d.text(margin+6, d.y+7, fmt.Sprintf("Overall Weighted Score: %d/100", scoring.WeightedScore(r)))
	d.font("", 9, colorMuted)
	d.text(margin+6, d.y+13, fmt.Sprintf("Average: %d/100  |  Highest: %s/100  |  Lowest: %s/100",
		summary.Average, formatScore(summary.Highest), formatScore(summary.Lowest)))
	d.y += 22

	for _, m := range scoring.Metrics {
		label := fmt.Sprintf("%s (%d%%)", scoring.Info(m).Name, scoring.DefaultWeights.Percent(m))
		d.scoreBar(label, scoring.Value(r, m))
	}
}

func (d *document) scoreBar(label string, score float64) {
	d.breakIfNeeded(14)
	c := toneColor(score)
	width := d.contentWidth()

	d.font("B", 9, colorText)
	d.text(margin, d.y, label)
	d.font("", 9, c)
	d.textRight(margin+width, d.y, fmt.Sprintf("%s/100 (%s)", formatScore(score), scoring.Label(score)))
	d.y += 3

	d.pdf.SetFillColor(230, 230, 230)
	d.pdf.RoundedRect(margin, d.y, width, 3, 1.5, "1234", "F")
	filled := score / 100 * width
	if filled < 3 {
		filled = 3
	}
	if filled > width {
		filled = width
	}
	d.fill(c)
	d.pdf.RoundedRect(margin, d.y, filled, 3, 1.5, "1234", "F")
	d.y += 8
}

func (d *document) groupHeading(label string, count int, c rgb) {
	d.breakIfNeeded(12)
	d.fill(c)
	d.pdf.RoundedRect(margin, d.y-3, 3, 6, 1, "1234", "F")
	d.font("B", 10, colorDark)
	d.text(margin+6, d.y, fmt.Sprintf("%s (%d)", label, count))
	d.y += 6
}

var insightGroups = []struct {
	label    string
	category domain.InsightCategory
	color    rgb
}{
	{"Risks", domain.InsightRisk, colorRed},
	{"Strengths", domain.InsightStrength, colorGreen},
	{"Weaknesses", domain.InsightWeakness, colorYellow},
	{"Opportunities", domain.InsightOpportunity, colorBlue},
}

func (d *document) insights(insights []domain.Insight) {
	if len(insights) == 0 {
		return
	}
	d.sectionTitle("Key Insights")

	for _, group := range insightGroups {
		var items []domain.Insight
		for _, i := range insights {
			if i.Category == group.category {
				items = append(items, i)
			}
		}
		if len(items) == 0 {
			continue
		}

		d.groupHeading(group.label, len(items), group.color)
		for _, item := range items {
			d.breakIfNeeded(10)
			d.font("", 8, colorText)
			d.text(margin+4, d.y, "•")
			d.wrapped(item.Text, margin+9, 8, colorText, d.contentWidth()-12, 4)
			if item.Confidence > 0 {
				d.font("", 7, colorMuted)
				d.text(margin+9, d.y, fmt.Sprintf("Confidence: %.0f%%", item.Confidence*100))
				d.y += 4
			}
			d.y++
		}
		d.y += 3
	}
}

var priorityGroups = []struct {
	label    string
	priority domain.Priority
	color    rgb
}{
	{"High Priority", domain.PriorityHigh, colorRed},
	{"Medium Priority", domain.PriorityMedium, colorOrange},
	{"Low Priority", domain.PriorityLow, colorBlue},
}

func (d *document) recommendations(recs []domain.Recommendation) {
	if len(recs) == 0 {
		return
	}
	d.sectionTitle("Recommendations")

	for _, group := range priorityGroups {
		var items []domain.Recommendation
		for _, r := range recs {
			if r.Priority == group.priority {
				items = append(items, r)
			}
		}
		if len(items) == 0 {
			continue
		}

		d.groupHeading(group.label, len(items), group.color)
		for i, rec := range items {
			d.breakIfNeeded(12)
			d.font("", 8, colorText)
			d.text(margin+4, d.y, fmt.Sprintf("%d.", i+1))
			d.wrapped(rec.Text, margin+11, 8, colorText, d.contentWidth()-14, 4)
			d.font("", 7, colorMuted)
			d.text(margin+11, d.y, "Category: "+rec.Category)
			d.y += 5
		}
		d.y += 3
	}
}

func highlightColor(c domain.HighlightCategory) rgb {
	switch c {
	case domain.HighlightRisky:
		return colorRed
	case domain.HighlightImportant:
		return colorBlue
	default:
		return colorYellow
	}
}

func (d *document) highlights(highlights []domain.Highlight) {
	if len(highlights) == 0 {
		return
	}
	d.sectionTitle("Key Highlights")

	width := d.contentWidth() - 10
	for _, h := range highlights {
		d.breakIfNeeded(16)
		d.fill(highlightColor(h.Category))
		d.pdf.Circle(margin+2, d.y-1, 1.5, "F")

		d.font("I", 8, colorDark)
		for _, l := range d.lines(`"`+h.Text+`"`, width) {
			d.breakIfNeeded(5)
			d.pdf.Text(margin+7, d.y, l)
			d.y += 4
		}
		d.wrapped("Reason: "+h.Reason, margin+7, 7, colorMuted, width, 3.5)
		d.y += 3
	}
}

func (d *document) fields(fields []domain.ExtractedField) {
	if len(fields) == 0 {
		return
	}
	d.sectionTitle("Extracted Fields")

	width := d.contentWidth()
	d.breakIfNeeded(10)
	d.fill(colorPrimary)
	d.pdf.RoundedRect(margin, d.y-4, width, 7, 1, "1234", "F")
	d.font("B", 8, colorWhite)
	d.text(margin+3, d.y, "Field Name")
	d.text(margin+55, d.y, "Value")
	d.text(margin+width-25, d.y, "Confidence")
	d.y += 6

	for i, f := range fields {
		d.breakIfNeeded(10)
		if i%2 == 0 {
			d.pdf.SetFillColor(248, 248, 248)
			d.pdf.Rect(margin, d.y-3.5, width, 7, "F")
		}

		name := []rune(f.Name)
		if len(name) > 25 {
			name = name[:25]
		}
		d.font("B", 8, colorText)
		d.text(margin+3, d.y, string(name))

		d.font("", 8, colorText)
		values := d.lines(f.Value, width-85)
		if len(values) > 0 {
			d.pdf.Text(margin+55, d.y, values[0])
		}
		d.font("", 8, toneColor(f.Confidence))
		d.text(margin+width-25, d.y, formatScore(f.Confidence)+"%")
		d.y += 6

		// At most two continuation lines per value.
		d.font("", 8, colorText)
		for j := 1; j < len(values) && j < 3; j++ {
			d.breakIfNeeded(5)
			d.pdf.Text(margin+55, d.y, values[j])
			d.y += 4
		}
	}
}

func questionColor(p domain.QuestionPriority) rgb {
	switch p {
	case domain.QuestionCritical:
		return colorRed
	case domain.QuestionImportant:
		return colorOrange
	default:
		return colorBlue
	}
}

func (d *document) questions(questions []domain.Question) {
	if len(questions) == 0 {
		return
	}
	d.sectionTitle("Questions & Clarifications")

	width := d.contentWidth() - 18
	for i, q := range questions {
		d.breakIfNeeded(16)
		d.fill(questionColor(q.Priority))
		d.pdf.RoundedRect(margin, d.y-3, 2, 5, 0.5, "1234", "F")

		d.font("B", 8, colorDark)
		d.text(margin+5, d.y, fmt.Sprintf("Q%d:", i+1))
		d.wrapped(q.Text, margin+14, 8, colorDark, width, 4)

		d.font("", 7, colorMuted)
		d.text(margin+14, d.y, fmt.Sprintf("Priority: %s | Category: %s", q.Priority, q.Category))
		d.y += 4

		if q.SuggestedAction != "" {
			d.font("I", 7, colorPrimary)
			for _, l := range d.lines("Action: "+q.SuggestedAction, width) {
				d.breakIfNeeded(5)
				d.pdf.Text(margin+14, d.y, l)
				d.y += 3.5
			}
		}
		d.y += 3
	}
}

func (d *document) disclaimer() {
	d.sectionTitle("Important Disclaimer")
	d.wrapped(disclaimer, margin, 8, colorMuted, d.contentWidth(), 4.5)
	d.y += 4
	d.wrapped(humanReview, margin, 8, colorMuted, d.contentWidth(), 4.5)
}
