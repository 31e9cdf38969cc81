// Package channelstate holds the per-channel mode assignments that drive
// routing: persona mode, managed-channel mapping, support toggle, mute expiry,
// and responded-thread markers. All state is in-process and resets on restart.
package channelstate

import (
	"sync"
	"time"
)

// Mode is the mutually exclusive high-level persona selector for a channel.
type Mode string

const (
	ModeUnset       Mode = ""
	ModePStreamOnly Mode = "pstream"
	ModeGeneral     Mode = "general"
	ModeFreeChat    Mode = "freechat"
	ModeRoast       Mode = "roast"
)

type channelState struct {
	mode            Mode
	managed         bool
	managedMode     Mode // pstream or general only
	supportDisabled bool
	mutedUntil      time.Time
}

// Registry is the process-wide channel state store. Safe for concurrent use;
// mutations are last-write-wins by design (channel configuration changes are
// rare, human-driven events).
type Registry struct {
	mu               sync.RWMutex
	channels         map[string]*channelState
	respondedThreads map[string]struct{}
}

// NewRegistry creates an empty registry. Unknown channel IDs read as all
// defaults until first write.
func NewRegistry() *Registry {
	return &Registry{
		channels:         make(map[string]*channelState),
		respondedThreads: make(map[string]struct{}),
	}
}

func (r *Registry) state(channelID string) *channelState {
	st, ok := r.channels[channelID]
	if !ok {
		st = &channelState{}
		r.channels[channelID] = st
	}
	return st
}

// SetMode assigns the slash-command mode for a channel. Free-chat and roast
// are mutually exclusive: setting one clears the other, which here falls out
// of mode being a single value. Setting ModeUnset clears the assignment.
func (r *Registry) SetMode(channelID string, mode Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state(channelID).mode = mode
}

// Mode returns the slash-command mode for a channel.
func (r *Registry) Mode(channelID string) Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if st, ok := r.channels[channelID]; ok {
		return st.mode
	}
	return ModeUnset
}

// ClearMode resets a channel's slash-command mode if it currently equals mode.
// Used by the /freechat off and /roast off commands so disabling a mode that
// is not active stays a no-op.
func (r *Registry) ClearMode(channelID string, mode Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.state(channelID)
	if st.mode == mode {
		st.mode = ModeUnset
	}
}

// Manage registers a channel with a managed mode. Only pstream-only and
// general are valid managed modes; anything else is coerced to general.
func (r *Registry) Manage(channelID string, mode Mode) {
	if mode != ModePStreamOnly {
		mode = ModeGeneral
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.state(channelID)
	st.managed = true
	st.managedMode = mode
}

// Unmanage removes a channel's managed registration. The slash-command mode,
// if any, becomes visible again.
func (r *Registry) Unmanage(channelID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if st, ok := r.channels[channelID]; ok {
		st.managed = false
		st.managedMode = ModeUnset
	}
}

// Managed reports whether the channel is explicitly managed and, if so, its
// managed mode.
func (r *Registry) Managed(channelID string) (Mode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if st, ok := r.channels[channelID]; ok && st.managed {
		return st.managedMode, true
	}
	return ModeUnset, false
}

// ManagedChannels returns a snapshot of managed channel IDs to modes.
func (r *Registry) ManagedChannels() map[string]Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]Mode)
	for id, st := range r.channels {
		if st.managed {
			out[id] = st.managedMode
		}
	}
	return out
}

// ResolveMode returns the effective mode for a message in this channel.
// The managed-channel mapping always wins when present; otherwise the
// slash-command mode applies.
func (r *Registry) ResolveMode(channelID string) Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.channels[channelID]
	if !ok {
		return ModeUnset
	}
	if st.managed {
		return st.managedMode
	}
	return st.mode
}

// SetSupportDisabled toggles the support persona for a channel. Independent
// of mode; the dedicated AI-chat channel ignores this flag (enforced by the
// routing engine).
func (r *Registry) SetSupportDisabled(channelID string, disabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state(channelID).supportDisabled = disabled
}

// SupportDisabled reports whether the support persona is disabled.
func (r *Registry) SupportDisabled(channelID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if st, ok := r.channels[channelID]; ok {
		return st.supportDisabled
	}
	return false
}

// Mute silences a channel until the given time.
func (r *Registry) Mute(channelID string, until time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state(channelID).mutedUntil = until
}

// Muted reports whether the channel is muted at the given instant.
// Expiry is lazy: a past mutedUntil reads as absent.
func (r *Registry) Muted(channelID string, now time.Time) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if st, ok := r.channels[channelID]; ok {
		return st.mutedUntil.After(now)
	}
	return false
}

// MarkThreadResponded records that the bot has replied in a thread at least
// once. Membership never blocks a reply when the bot is directly mentioned;
// that exception lives in the routing engine.
func (r *Registry) MarkThreadResponded(threadID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.respondedThreads[threadID] = struct{}{}
}

// ThreadResponded reports whether the bot has already replied in a thread.
func (r *Registry) ThreadResponded(threadID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.respondedThreads[threadID]
	return ok
}
