// Package auth keeps the session a client authenticates with.
package auth

import (
	"sync"
	"time"
)

// Session is a DSM login session.
type Session struct {
	// ID is sent as _sid with every request.
	ID string
	// Account the session was opened for, empty when the id was supplied
	// directly.
	Account string
	// Name is the DSM session name, e.g. "FileStation".
	Name string
	// IssuedAt is when the session id was set.
	IssuedAt time.Time
}

// Valid reports whether the session carries an id.
func (s *Session) Valid() bool {
	return s != nil && s.ID != ""
}

// SessionManager guards the session shared by concurrent requests.
type SessionManager struct {
	mutex   sync.RWMutex
	session *Session
}

// NewSessionManager returns a manager seeded with sid, which may be empty.
func NewSessionManager(sid string) *SessionManager {
	m := &SessionManager{}
	if sid != "" {
		m.Set(&Session{ID: sid})
	}

	return m
}

// ID returns the current session id, empty when there is none.
func (m *SessionManager) ID() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if !m.session.Valid() {
		return ""
	}

	return m.session.ID
}

// Session returns a copy of the current session.
func (m *SessionManager) Session() (Session, bool) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	if !m.session.Valid() {
		return Session{}, false
	}

	return *m.session, true
}

// Set replaces the session. A session without an id clears it.
func (m *SessionManager) Set(session *Session) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !session.Valid() {
		m.session = nil

		return
	}

	copied := *session
	if copied.IssuedAt.IsZero() {
		copied.IssuedAt = time.Now()
	}

	m.session = &copied
}

// SetID replaces the session with one carrying only sid.
func (m *SessionManager) SetID(sid string) {
	m.Set(&Session{ID: sid})
}

// Clear drops the session.
func (m *SessionManager) Clear() {
	m.Set(nil)
}
