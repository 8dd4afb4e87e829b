package workflow

import (
	"sync"
	"time"

	"github.com/aretw0/motorpool/pkg/domain"
)

// Stage identifies where an identity is inside a guided dialog.
type Stage string

const (
	// StageChoosingCar: the free-car menu was shown, waiting for a selection.
	StageChoosingCar Stage = "choosing_car"
	// StageCollectingMedia: a car was chosen, condition media is being collected.
	StageCollectingMedia Stage = "collecting_media"
	// StageDescribingCar: an admin entered the register-car dialog, waiting
	// for the description text.
	StageDescribingCar Stage = "describing_car"
)

// Session is the ephemeral per-identity dialog state. It lives only in
// memory: losing it on restart is harmless because the registry is mutated
// at commit time only.
type Session struct {
	Stage        Stage
	CarID        int
	Media        []domain.MediaAttachment
	LastActivity time.Time
}

// Sessions is an explicit keyed session table (identity → session). Stale
// sessions are not expired by an internal timer; the host may call Reap
// periodically with a configured idle cutoff. Every read and write of a
// stored session goes through the table lock, so dialog handlers and the
// reaper never touch a session concurrently.
type Sessions struct {
	mu   sync.Mutex
	byID map[string]*Session
}

// NewSessions creates an empty session table.
func NewSessions() *Sessions {
	return &Sessions{byID: make(map[string]*Session)}
}

// Peek returns a copy of the identity's session.
func (s *Sessions) Peek(identity string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[identity]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// Update runs fn on the identity's session while holding the table lock,
// making a stage check and its mutation atomic with respect to Reap. It
// reports whether a session existed.
func (s *Sessions) Update(identity string, fn func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.byID[identity]
	if !ok {
		return false
	}
	fn(sess)
	return true
}

// Put installs (or replaces) the session for an identity.
func (s *Sessions) Put(identity string, sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[identity] = sess
}

// Delete discards the session for an identity.
func (s *Sessions) Delete(identity string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byID, identity)
}

// Len reports the number of active sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Reap discards sessions idle since before the cutoff and returns how many
// were dropped. Abandonment is harmless: nothing committed has changed.
func (s *Sessions) Reap(idleFor time.Duration, now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-idleFor)
	dropped := 0
	for id, sess := range s.byID {
		if sess.LastActivity.Before(cutoff) {
			delete(s.byID, id)
			dropped++
		}
	}
	return dropped
}
