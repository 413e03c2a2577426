package tui

import (
	"github.com/de-tools/riskread/pkg/services/notify"
	"github.com/de-tools/riskread/pkg/services/watch"
)

// UpdateMsg carries one snapshot from the runner.
type UpdateMsg struct {
	Update watch.Update
}

// RunnerClosedMsg is sent when the runner's update channel closes.
type RunnerClosedMsg struct{}

// NoticeMsg forwards a service notification into the program.
type NoticeMsg struct {
	Notice notify.Notice
}

// ReanalyzedMsg reports the outcome of a reanalysis request.
type ReanalyzedMsg struct {
	Err error
}

// ReportWrittenMsg reports where the PDF landed.
type ReportWrittenMsg struct {
	Path string
	Err  error
}

// ClearNoticeMsg hides the notice after a timeout.
type ClearNoticeMsg struct {
	Seq int
}
