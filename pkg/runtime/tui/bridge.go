package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/de-tools/riskread/pkg/services/notify"
)

// Bridge is a notify.Notifier that forwards notices into a running program.
// Notices sent before Attach are held and delivered once the program runs.
type Bridge struct {
	mu      sync.Mutex
	send    func(tea.Msg)
	pending []notify.Notice
}

func (b *Bridge) Attach(p *tea.Program) {
	b.attach(p.Send)
}

func (b *Bridge) attach(send func(tea.Msg)) {
	b.mu.Lock()
	b.send = send
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	if len(pending) == 0 {
		return
	}
	// Send blocks until the program's event loop is running.
	go func() {
		for _, n := range pending {
			send(NoticeMsg{Notice: n})
		}
	}()
}

func (b *Bridge) Notify(n notify.Notice) {
	b.mu.Lock()
	send := b.send
	if send == nil {
		b.pending = append(b.pending, n)
	}
	b.mu.Unlock()

	if send != nil {
		send(NoticeMsg{Notice: n})
	}
}
