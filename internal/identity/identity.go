// Package identity holds the current user label. The label is not an
// authenticated principal, only a namespace selector for persisted data;
// any non-empty string is accepted.
package identity

import (
	"strings"
	"sync"
)

// Holder owns the current identity label and notifies subscribers on
// every change. Subscribers are invoked synchronously, in registration
// order, with the new label ("" after Clear).
type Holder struct {
	mu    sync.Mutex
	label string
	subs  []func(label string)
}

func NewHolder() *Holder {
	return &Holder{}
}

// Current returns the active label and whether one is set.
func (h *Holder) Current() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.label, h.label != ""
}

// Set installs a new identity label and notifies subscribers. Setting the
// label that is already active still notifies, so dependents reload their
// state exactly as on a fresh login. An empty label is ignored; use Clear.
func (h *Holder) Set(label string) {
	label = strings.TrimSpace(label)
	if label == "" {
		return
	}
	h.mu.Lock()
	h.label = label
	subs := append([](func(string))(nil), h.subs...)
	h.mu.Unlock()

	for _, fn := range subs {
		fn(label)
	}
}

// Clear drops the active identity and notifies subscribers with "".
func (h *Holder) Clear() {
	h.mu.Lock()
	h.label = ""
	subs := append([](func(string))(nil), h.subs...)
	h.mu.Unlock()

	for _, fn := range subs {
		fn("")
	}
}

// Subscribe registers fn for identity-change notifications. There is no
// unsubscribe; holders live as long as the process.
func (h *Holder) Subscribe(fn func(label string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = append(h.subs, fn)
}
