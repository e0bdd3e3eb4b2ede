package session

import "sync"

// Override holds an optional test double that replaces real browser creation. It may be
// shared by the managers of concurrently running scenarios. Whoever installs a double is
// responsible for clearing it.
type Override struct {
	mu     sync.RWMutex
	double func(typeName string) Handle
}

// NewOverride creates an empty override.
func NewOverride() *Override {
	return &Override{}
}

// Install makes every proxy created afterwards use h instead of a real browser.
func (o *Override) Install(h Handle) {
	o.InstallFunc(func(string) Handle { return h })
}

// InstallFunc installs a constructor choosing the double per session type.
func (o *Override) InstallFunc(fn func(typeName string) Handle) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.double = fn
}

// Clear removes the installed double.
func (o *Override) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.double = nil
}

// Installed reports whether a double is currently installed.
func (o *Override) Installed() bool {
	if o == nil {
		return false
	}
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.double != nil
}

func (o *Override) lookup(typeName string) (Handle, bool) {
	if o == nil {
		return nil, false
	}
	o.mu.RLock()
	fn := o.double
	o.mu.RUnlock()
	if fn == nil {
		return nil, false
	}
	h := fn(typeName)
	return h, h != nil
}
