package playback

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingOwner struct {
	id     string
	pauses int
}

func (r *recordingOwner) ID() string { return r.id }
func (r *recordingOwner) Pause()     { r.pauses++ }

func TestClaimPausesPreviousOwner(t *testing.T) {
	s := NewSlot()
	a := &recordingOwner{id: "demo-real-estate"}
	b := &recordingOwner{id: "demo-med-spa"}

	_, ok := s.Claim(a)
	assert.False(t, ok)
	assert.Equal(t, "demo-real-estate", s.Current())

	paused, ok := s.Claim(b)
	assert.True(t, ok)
	assert.Equal(t, "demo-real-estate", paused)
	assert.Equal(t, 1, a.pauses)
	assert.Equal(t, 0, b.pauses)
	assert.Equal(t, "demo-med-spa", s.Current())
}

func TestReclaimBySameOwnerDoesNotPause(t *testing.T) {
	s := NewSlot()
	a := &recordingOwner{id: "a"}
	s.Claim(a)
	_, ok := s.Claim(a)
	assert.False(t, ok)
	assert.Equal(t, 0, a.pauses)
}

func TestReleaseOnlyByOwner(t *testing.T) {
	s := NewSlot()
	a := &recordingOwner{id: "a"}
	b := &recordingOwner{id: "b"}
	s.Claim(a)
	s.Claim(b)

	s.Release(a)
	assert.Equal(t, "b", s.Current())

	s.Release(b)
	assert.Equal(t, "", s.Current())
}

func TestConcurrentClaimsLeaveOneOwner(t *testing.T) {
	s := NewSlot()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Claim(FuncOwner{OwnerID: string(rune('a' + i%26))})
		}(i)
	}
	wg.Wait()
	assert.NotEmpty(t, s.Current())
}
