package session

import (
	"context"
	"strings"

	"github.com/hairizuan-noorazman/steprunner/logger"
)

// Manager creates and reuses the named browser sessions of one scenario. A Manager is
// goroutine-confined: every concurrently running scenario gets its own.
type Manager struct {
	registry    *Registry
	factory     Factory
	override    *Override
	defaultType string
	gate        *callGate
	logger      logger.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithOverride makes the manager's proxies use the double installed in o, when there is one.
func WithOverride(o *Override) Option {
	return func(m *Manager) {
		m.override = o
	}
}

// WithDefaultType sets the session type used when no type name is requested.
func WithDefaultType(typeName string) Option {
	return func(m *Manager) {
		m.defaultType = typeName
	}
}

// NewManager creates a session manager creating real browsers through factory.
func NewManager(factory Factory, log logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		registry: NewRegistry(log),
		factory:  factory,
		gate:     &callGate{},
		logger:   log,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the session for typeName, registering a new lazy session on first request and
// making it current. An empty typeName returns the current session, creating one of the
// default type if there is none.
func (m *Manager) Get(typeName string) (*Proxy, error) {
	if strings.TrimSpace(typeName) == "" {
		if p, ok := m.registry.Current(); ok {
			return p, nil
		}
		resolved, err := m.resolveDefault()
		if err != nil {
			return nil, err
		}
		return m.open(resolved, resolved), nil
	}

	resolved, err := ResolveType(m.factory, typeName)
	if err != nil {
		m.logger.Error(context.Background(), "unsupported session type requested", map[string]interface{}{
			"type":  typeName,
			"error": err.Error(),
		})
		return nil, err
	}
	return m.open(resolved, resolved), nil
}

// Open returns the session registered under name, registering a new lazy session of
// typeName if there is none, and makes it current. It allows several sessions of the same
// type to live side by side.
func (m *Manager) Open(name, typeName string) (*Proxy, error) {
	var resolved string
	var err error
	if strings.TrimSpace(typeName) == "" {
		resolved, err = m.resolveDefault()
	} else {
		resolved, err = ResolveType(m.factory, typeName)
	}
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = resolved
	}
	return m.open(name, resolved), nil
}

func (m *Manager) open(name, typeName string) *Proxy {
	if p, ok := m.registry.Lookup(name); ok {
		m.registry.Use(name)
		return p
	}

	p := newProxy(name, typeName, m.factory, m.override, m.gate, m.logger)
	m.registry.Register(name, p)
	m.logger.Debug(context.Background(), "session registered", map[string]interface{}{
		"session": name,
		"type":    typeName,
	})
	return p
}

func (m *Manager) resolveDefault() (string, error) {
	if m.defaultType != "" {
		return ResolveType(m.factory, m.defaultType)
	}
	supported := m.factory.SupportedTypes()
	if len(supported) == 0 {
		return "", ErrNoSessionTypes
	}
	return supported[0], nil
}

// Use switches the current session to name. It reports false, leaving no current session,
// if name is not registered.
func (m *Manager) Use(name string) (*Proxy, bool) {
	m.registry.Use(name)
	return m.registry.Current()
}

// Current returns the current session without creating one.
func (m *Manager) Current() (*Proxy, bool) {
	return m.registry.Current()
}

// Names returns the names of the registered sessions.
func (m *Manager) Names() []string {
	return m.registry.Names()
}

// CloseCurrent closes and forgets the current session.
func (m *Manager) CloseCurrent() {
	m.registry.CloseCurrent()
}

// CloseAll closes every session of the scenario.
func (m *Manager) CloseAll() {
	m.registry.CloseAll()
}

// Reset resets the current session's browser if it supports it.
func (m *Manager) Reset() error {
	return m.registry.Reset()
}

// SuspendCalls turns every browser call made through this manager's sessions into a no-op.
func (m *Manager) SuspendCalls() {
	m.gate.suspended = true
}

// ResumeCalls re-enables browser calls.
func (m *Manager) ResumeCalls() {
	m.gate.suspended = false
}

// CallsSuspended reports whether browser calls are currently suspended.
func (m *Manager) CallsSuspended() bool {
	return m.gate.suspended
}
