// Package session tracks per-conversation state for the lifetime of the
// process. Sessions are created lazily and never deleted; an ended learning
// session is represented by StatusInactive.
package session

import "github.com/memomate/memomate/core/lang"

// Status is the finite-state-machine step of a conversation.
type Status int

const (
	// StatusUnknown marks a conversation that has not issued !start yet.
	StatusUnknown Status = iota
	// StatusUnauthenticated marks a started conversation before onboarding.
	StatusUnauthenticated
	// StatusSelectLanguage waits for a learning language token.
	StatusSelectLanguage
	// StatusSelectLevel waits for a difficulty level token.
	StatusSelectLevel
	// StatusAuthenticated marks a fully configured, playing conversation.
	StatusAuthenticated
	// StatusInactive marks a conversation stopped via !stop.
	StatusInactive
)

func (s Status) String() string {
	switch s {
	case StatusUnknown:
		return "unknown"
	case StatusUnauthenticated:
		return "unauthenticated"
	case StatusSelectLanguage:
		return "select_language"
	case StatusSelectLevel:
		return "select_level"
	case StatusAuthenticated:
		return "authenticated"
	case StatusInactive:
		return "inactive"
	}
	return "invalid"
}

// Exercise is the outstanding quiz question awaiting the user's answer.
type Exercise struct {
	WordID int64
	Prompt string
	Answer string
}

// Session holds the mutable conversation state. A session is only ever
// touched by one dispatch worker at a time, so it carries no lock of its
// own; the Store synchronizes the lookup.
type Session struct {
	SID            string
	Status         Status
	TargetLanguage lang.Language
	Level          lang.Level
	Pending        *Exercise
	LastMessage    string
}

// Onboarding reports whether the session is mid-setup.
func (s *Session) Onboarding() bool {
	switch s.Status {
	case StatusUnauthenticated, StatusSelectLanguage, StatusSelectLevel:
		return true
	}
	return false
}

// Playing reports whether the session runs an active quiz.
func (s *Session) Playing() bool {
	return s.Status == StatusAuthenticated
}

// Transition moves the session to a new status. A pending exercise is only
// valid while authenticated, so leaving that status clears it.
func (s *Session) Transition(to Status) {
	s.Status = to
	if to != StatusAuthenticated {
		s.Pending = nil
	}
}
