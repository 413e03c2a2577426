package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/riskread/pkg/models/domain"
)

// Reporter outputs reports to the console in a formatted text form
type Reporter struct {
	writer io.Writer
}

// NewReporter creates a new console reporter
func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

func (c *Reporter) Handle(report *domain.Report) error {
	tmpl := `
{{.Title}}{{if .Badges}} [{{join .Badges ", "}}]{{end}}
{{- if .Subtitle}}
{{.Subtitle}}{{end}}
{{range .Sections}}
=== {{.Title}} ===
{{- range $key, $value := .Summary}}
{{$key}}: {{$value}}
{{- end}}
{{- range .Details}}
- {{.Name}}: {{.Value}}{{if .Unit}} {{.Unit}}{{end}}
{{- if .Description}}
  {{.Description}}{{end}}
{{- end}}
{{end}}`
	t, err := template.New("report").Funcs(template.FuncMap{"join": strings.Join}).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, report)
}
