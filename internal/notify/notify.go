// Package notify holds the single transient message shown to the operator.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

const DefaultDuration = 4 * time.Second

type Notification struct {
	Kind    Kind
	Message string
	ShownAt time.Time
}

// Notifier keeps at most one notification. A newer one replaces the older
// and restarts the auto-hide timer.
type Notifier struct {
	duration time.Duration

	mu       sync.Mutex
	current  *Notification
	gen      uint64
	timer    *time.Timer
	onChange func(*Notification)
}

func New(duration time.Duration) *Notifier {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return &Notifier{duration: duration}
}

// OnChange registers fn, called with the new notification or nil when hidden.
func (n *Notifier) OnChange(fn func(*Notification)) {
	n.mu.Lock()
	n.onChange = fn
	n.mu.Unlock()
}

func (n *Notifier) Show(kind Kind, message string) {
	note := &Notification{Kind: kind, Message: message, ShownAt: time.Now()}

	n.mu.Lock()
	n.gen++
	gen := n.gen
	n.current = note
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.duration, func() { n.expire(gen) })
	fn := n.onChange
	n.mu.Unlock()

	log.Debug().Str("kind", string(kind)).Msg("[notify] " + message)
	if fn != nil {
		c := *note
		fn(&c)
	}
}

func (n *Notifier) Success(message string) { n.Show(Success, message) }
func (n *Notifier) Error(message string)   { n.Show(Error, message) }

// Dismiss hides the current notification immediately.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	n.gen++
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	had := n.current != nil
	n.current = nil
	fn := n.onChange
	n.mu.Unlock()

	if had && fn != nil {
		fn(nil)
	}
}

func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

// expire hides the notification shown at generation gen unless it was replaced.
func (n *Notifier) expire(gen uint64) {
	n.mu.Lock()
	if gen != n.gen || n.current == nil {
		n.mu.Unlock()
		return
	}
	n.current = nil
	n.timer = nil
	fn := n.onChange
	n.mu.Unlock()

	if fn != nil {
		fn(nil)
	}
}
