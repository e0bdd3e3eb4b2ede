package session

import (
	"context"
	"sort"

	"github.com/hairizuan-noorazman/steprunner/logger"
)

// Registry maps session names to proxies and tracks the current session. It is owned by
// one scenario goroutine and performs no locking.
type Registry struct {
	sessions map[string]*Proxy
	current  string
	logger   logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Proxy),
		logger:   log,
	}
}

// Register stores p under name and makes it the current session.
func (r *Registry) Register(name string, p *Proxy) {
	r.sessions[name] = p
	r.current = name
}

// Current returns the current session.
func (r *Registry) Current() (*Proxy, bool) {
	if r.current == "" {
		return nil, false
	}
	p, ok := r.sessions[r.current]
	return p, ok
}

// Lookup returns the session registered under name without changing the current session.
func (r *Registry) Lookup(name string) (*Proxy, bool) {
	p, ok := r.sessions[name]
	return p, ok
}

// IsRegistered checks whether a session exists under name.
func (r *Registry) IsRegistered(name string) bool {
	_, ok := r.sessions[name]
	return ok
}

// Use makes name the current session. An unknown name leaves no current session.
func (r *Registry) Use(name string) {
	if _, ok := r.sessions[name]; !ok {
		r.current = ""
		return
	}
	r.current = name
}

// CloseCurrent closes and removes the current session.
func (r *Registry) CloseCurrent() {
	p, ok := r.Current()
	if !ok {
		r.current = ""
		return
	}
	r.closeQuietly(p)
	delete(r.sessions, r.current)
	r.current = ""
}

// CloseAll closes every session and empties the registry.
func (r *Registry) CloseAll() {
	for _, name := range r.Names() {
		r.closeQuietly(r.sessions[name])
	}
	r.sessions = make(map[string]*Proxy)
	r.current = ""
}

// Reset resets the current session if its browser supports it.
func (r *Registry) Reset() error {
	p, ok := r.Current()
	if !ok {
		return nil
	}
	return p.Reset()
}

// Names returns the registered session names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sessions))
	for name := range r.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	return len(r.sessions)
}

// closeQuietly quits the browser. Cleanup failures are logged and never returned.
func (r *Registry) closeQuietly(p *Proxy) {
	if err := p.Quit(); err != nil {
		r.logger.Warn(context.Background(), "failed to close browser session", map[string]interface{}{
			"session": p.Name(),
			"type":    p.Type(),
			"error":   err.Error(),
		})
		return
	}
	r.logger.Debug(context.Background(), "browser session closed", map[string]interface{}{
		"session": p.Name(),
	})
}
