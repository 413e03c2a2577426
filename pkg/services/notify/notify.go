// Package notify carries short user-facing notices (the toasts of the web
// client) from services to whatever surface is showing them.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

type Notice struct {
	Level   Level
	Message string
}

type Notifier interface {
	Notify(n Notice)
}

func Success(n Notifier, message string) {
	n.Notify(Notice{Level: LevelSuccess, Message: message})
}

func Error(n Notifier, message string) {
	n.Notify(Notice{Level: LevelError, Message: message})
}

func Info(n Notifier, message string) {
	n.Notify(Notice{Level: LevelInfo, Message: message})
}

// Func adapts a plain function, e.g. one that forwards into a bubbletea program.
type Func func(Notice)

func (f Func) Notify(n Notice) {
	f(n)
}

// Discard drops every notice.
var Discard Notifier = Func(func(Notice) {})

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#28A745")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#DC3545")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AB8D"))
)

// Terminal prints notices as single styled lines.
type Terminal struct {
	mu     sync.Mutex
	writer io.Writer
}

func NewTerminal(writer io.Writer) *Terminal {
	if writer == nil {
		writer = os.Stderr
	}
	return &Terminal{writer: writer}
}

func (t *Terminal) Notify(n Notice) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.writer, Render(n))
}

func Render(n Notice) string {
	switch n.Level {
	case LevelSuccess:
		return successStyle.Render("✓ " + n.Message)
	case LevelError:
		return errorStyle.Render("✗ " + n.Message)
	default:
		return infoStyle.Render("• " + n.Message)
	}
}

// Recorder keeps every notice in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

func (r *Recorder) Messages(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, n := range r.notices {
		if n.Level == level {
			out = append(out, n.Message)
		}
	}
	return out
}
