package domain

// Report is the neutral shape rendered by the terminal reporters.
type Report struct {
	Title    string
	Subtitle string
	Badges   []string // "Completed", "Cached", "Demo"
	Sections []ReportSection
}

// ReportSection represents a logical section in the report
type ReportSection struct {
	Title   string
	Summary map[string]interface{}
	Details []ReportDetail
}

// ReportDetail represents detailed information within a section
type ReportDetail struct {
	Name        string
	Value       interface{}
	Unit        string
	Description string
}
