package quota

import (
	"sync"
	"time"
)

// DefaultWindow is how long a quota widget stays up.
const DefaultWindow = 60 * time.Second

// WidgetSetter is the slice of the host UI a Display needs.
type WidgetSetter interface {
	SetWidget(key string, lines []string)
}

// Timer is a pending expiry.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f after d.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Display shows lines under one widget key and clears them after the
// window. Showing again before expiry replaces the lines and restarts the
// window; a superseded timer never clears the newer content.
type Display struct {
	key    string
	window time.Duration
	after  AfterFunc

	mu     sync.Mutex
	gen    uint64
	timer  Timer
	target WidgetSetter
}

func NewDisplay(key string, window time.Duration, after AfterFunc) *Display {
	if window <= 0 {
		window = DefaultWindow
	}
	if after == nil {
		after = realAfterFunc
	}
	return &Display{key: key, window: window, after: after}
}

// Show puts lines on target and restarts the expiry window. A widget still
// shown on a different target is cleared first.
func (d *Display) Show(target WidgetSetter, lines []string) {
	if target == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	if d.target != nil && d.target != target {
		d.target.SetWidget(d.key, nil)
	}
	d.gen++
	gen := d.gen
	d.target = target
	target.SetWidget(d.key, lines)
	d.timer = d.after(d.window, func() { d.expire(gen) })
}

// Clear removes the widget now and cancels any pending expiry.
func (d *Display) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.gen++
	if d.target != nil {
		d.target.SetWidget(d.key, nil)
		d.target = nil
	}
}

func (d *Display) expire(gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if gen != d.gen || d.timer == nil {
		return
	}
	d.timer = nil
	d.gen++
	if d.target != nil {
		d.target.SetWidget(d.key, nil)
		d.target = nil
	}
}

func (d *Display) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
