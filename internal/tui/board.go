package tui

import (
	"sort"
	"sync"

	"github.com/janekbaraniewski/usagebridge/internal/host"
)

// Notice is the last message a command reported.
type Notice struct {
	Text  string
	Level host.NotifyLevel
}

// Board is a host.UI that keeps widgets and the last notice in memory for
// the dashboard to draw. It is safe for use from timer goroutines.
type Board struct {
	mu       sync.RWMutex
	widgets  map[string][]string
	notice   Notice
	onChange func()
}

func NewBoard() *Board {
	return &Board{widgets: make(map[string][]string)}
}

// SetOnChange registers a callback fired after every widget or notice
// change, outside the board lock.
func (b *Board) SetOnChange(fn func()) {
	b.mu.Lock()
	b.onChange = fn
	b.mu.Unlock()
}

func (b *Board) Notify(msg string, level host.NotifyLevel) {
	b.mu.Lock()
	b.notice = Notice{Text: msg, Level: level}
	fn := b.onChange
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (b *Board) SetWidget(key string, lines []string) {
	b.mu.Lock()
	if lines == nil {
		delete(b.widgets, key)
	} else {
		b.widgets[key] = append([]string(nil), lines...)
	}
	fn := b.onChange
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (b *Board) Widget(key string) ([]string, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	lines, ok := b.widgets[key]
	return append([]string(nil), lines...), ok
}

// Keys returns widget keys in lexical order.
func (b *Board) Keys() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	keys := make([]string, 0, len(b.widgets))
	for k := range b.widgets {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (b *Board) LastNotice() Notice {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.notice
}
