// Package playback tracks which media element on a page currently owns playback.
package playback

import "sync"

// Owner is a media element that can be asked to pause when another one starts.
type Owner interface {
	ID() string
	Pause()
}

// Slot is a single-slot registry of the currently playing media owner.
// Claiming the slot pauses the previous owner; owners release it on end or error.
type Slot struct {
	mu      sync.Mutex
	current Owner
}

// NewSlot creates an empty slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Claim makes o the current owner and pauses the previous one, if any and if different.
// It returns the ID of the paused owner.
func (s *Slot) Claim(o Owner) (paused string, ok bool) {
	s.mu.Lock()
	prev := s.current
	s.current = o
	s.mu.Unlock()
	if prev == nil || prev.ID() == o.ID() {
		return "", false
	}
	prev.Pause()
	return prev.ID(), true
}

// Release clears the slot if o still owns it. Releasing a non-owner is a no-op.
func (s *Slot) Release(o Owner) {
	s.ReleaseID(o.ID())
}

// ReleaseID clears the slot if the owner with id still owns it.
func (s *Slot) ReleaseID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && s.current.ID() == id {
		s.current = nil
	}
}

// Current returns the ID of the current owner, or "".
func (s *Slot) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ""
	}
	return s.current.ID()
}

// FuncOwner adapts an ID and a pause callback to Owner.
type FuncOwner struct {
	OwnerID string
	OnPause func()
}

// ID implements Owner.
func (f FuncOwner) ID() string { return f.OwnerID }

// Pause implements Owner.
func (f FuncOwner) Pause() {
	if f.OnPause != nil {
		f.OnPause()
	}
}
