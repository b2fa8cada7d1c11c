package upstream

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// ControlSender delivers control frames to the upstream feed.
type ControlSender interface {
	SendControl(msg interface{})
}

// Registry is the single authority for which symbols anyone downstream
// cares about. A symbol is subscribed upstream iff its refcount is
// positive; control frames carry only the symbols entering or leaving
// the global set, never the full set.
type Registry struct {
	mu     sync.Mutex
	refs   map[string]int
	sender ControlSender
	logger *zap.Logger
}

func NewRegistry(sender ControlSender, logger *zap.Logger) *Registry {
	return &Registry{
		refs:   make(map[string]int),
		sender: sender,
		logger: logger,
	}
}

// AddInterest bumps refcounts and subscribes upstream to the symbols that
// just entered the global want-set.
func (r *Registry) AddInterest(symbols []string) {
	r.mu.Lock()
	var added []string
	for _, s := range symbols {
		r.refs[s]++
		if r.refs[s] == 1 {
			added = append(added, s)
		}
	}
	r.mu.Unlock()

	if len(added) == 0 {
		return
	}
	sort.Strings(added)
	r.logger.Info("subscribing upstream", zap.Strings("symbols", added))
	r.sender.SendControl(SubscriptionMessage{Action: "subscribe", Quotes: added})
}

// RemoveInterest drops refcounts and unsubscribes upstream from the
// symbols that just left the global want-set.
func (r *Registry) RemoveInterest(symbols []string) {
	r.mu.Lock()
	var removed []string
	for _, s := range symbols {
		n, ok := r.refs[s]
		if !ok {
			continue
		}
		if n <= 1 {
			delete(r.refs, s)
			removed = append(removed, s)
		} else {
			r.refs[s] = n - 1
		}
	}
	r.mu.Unlock()

	if len(removed) == 0 {
		return
	}
	sort.Strings(removed)
	r.logger.Info("unsubscribing upstream", zap.Strings("symbols", removed))
	r.sender.SendControl(SubscriptionMessage{Action: "unsubscribe", Quotes: removed})
}

// Resubscribe replays the full current want-set as one subscribe frame.
// The upstream keeps no subscription state across reconnects, so this
// runs every time the link reaches Ready.
func (r *Registry) Resubscribe() {
	want := r.WantSet()
	if len(want) == 0 {
		return
	}
	r.logger.Info("replaying subscriptions after reconnect", zap.Strings("symbols", want))
	r.sender.SendControl(SubscriptionMessage{Action: "subscribe", Quotes: want})
}

// WantSet snapshots the global want-set in sorted order.
func (r *Registry) WantSet() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make([]string, 0, len(r.refs))
	for s := range r.refs {
		want = append(want, s)
	}
	sort.Strings(want)
	return want
}
