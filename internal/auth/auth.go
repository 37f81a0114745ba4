// Package auth guards the ledger behind a single shared secret.
//
// A Session is an explicit value handed to every ledger operation; nothing
// here is global. The HTTP layer keeps sessions in a Registry keyed by a
// random ID carried in a cookie.
package auth

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Session is the caller's authentication state.
type Session struct {
	ID            string
	Authenticated bool
	ExpiresAt     time.Time
}

// Anonymous is a session that has not logged in.
func Anonymous() Session { return Session{} }

// Authenticator compares input against the configured secret.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Login returns sess marked authenticated when input matches the secret
// exactly. An empty secret or empty input never matches.
func (a *Authenticator) Login(sess Session, input string) (Session, error) {
	if len(a.secret) == 0 || input == "" {
		return sess, ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare(a.secret, []byte(input)) != 1 {
		return sess, ErrInvalidCredentials
	}
	sess.Authenticated = true
	return sess, nil
}

// Logout clears the authenticated flag.
func Logout(sess Session) Session {
	sess.Authenticated = false
	return sess
}

// Registry holds live sessions in memory. Sessions expire TTL after they
// were last saved.
type Registry struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]Session
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{ttl: ttl, now: time.Now, sessions: make(map[string]Session)}
}

// New starts an anonymous session with a fresh ID.
func (r *Registry) New() Session {
	return r.Save(Session{ID: uuid.NewString()})
}

// Save stores sess and extends its expiry.
func (r *Registry) Save(sess Session) Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	sess.ExpiresAt = r.now().Add(r.ttl)
	r.sessions[sess.ID] = sess
	return sess
}

// Get returns the live session for id. Expired sessions are dropped.
func (r *Registry) Get(id string) (Session, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return Session{}, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sess, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	if !r.now().Before(sess.ExpiresAt) {
		delete(r.sessions, id)
		return Session{}, false
	}
	return sess, true
}

func (r *Registry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Sweep removes expired sessions and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	n := 0
	for id, s := range r.sessions {
		if !now.Before(s.ExpiresAt) {
			delete(r.sessions, id)
			n++
		}
	}
	return n
}
