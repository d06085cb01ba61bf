// Package generation guards asynchronous loads against stale responses.
//
// Every load for a scope takes a Token from Next. When the result arrives
// it is applied only if Accept reports the token is still the newest one
// for its scope, so a slow earlier response can never overwrite a later one.
package generation

import (
	"sync"
	"sync/atomic"
)

// Token identifies one load of one scope.
type Token struct {
	Key string
	Gen uint64
}

type entry struct {
	gen      uint64
	accepted bool
}

// Tracker hands out tokens and decides which results are current.
type Tracker struct {
	mu      sync.Mutex
	scopes  map[string]*entry
	stale   atomic.Int64
	onStale func(key string)
}

// New creates a tracker.
func New(opts ...Option) *Tracker {
	t := &Tracker{scopes: make(map[string]*entry)}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Next supersedes every earlier token of key and returns a fresh one.
func (t *Tracker) Next(key string) Token {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.scopes[key]
	if !ok {
		e = &entry{}
		t.scopes[key] = e
	}
	e.gen++
	e.accepted = false
	return Token{Key: key, Gen: e.gen}
}

// IsCurrent reports whether tok is the newest token of its scope.
func (t *Tracker) IsCurrent(tok Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.scopes[tok.Key]
	return ok && e.gen == tok.Gen
}

// Accept atomically checks that tok is current and not yet accepted, and
// marks it accepted. A false result means the caller must drop its result.
func (t *Tracker) Accept(tok Token) bool {
	t.mu.Lock()
	e, ok := t.scopes[tok.Key]
	current := ok && e.gen == tok.Gen && !e.accepted
	if current {
		e.accepted = true
	}
	t.mu.Unlock()

	if !current {
		t.stale.Add(1)
		if t.onStale != nil {
			t.onStale(tok.Key)
		}
	}
	return current
}

// Stale is the number of results rejected by Accept.
func (t *Tracker) Stale() int64 {
	return t.stale.Load()
}

// Scopes is the number of keys seen so far.
func (t *Tracker) Scopes() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.scopes)
}
