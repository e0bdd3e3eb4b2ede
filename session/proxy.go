package session

import (
	"context"
	"fmt"

	"github.com/hairizuan-noorazman/steprunner/logger"
)

// callGate is shared by a manager and its proxies. While suspended, proxies skip browser I/O.
type callGate struct {
	suspended bool
}

// Proxy wraps a browser handle that is only created on the first call needing a browser.
// A Proxy belongs to the goroutine running its scenario and is not safe for concurrent use.
type Proxy struct {
	name     string
	typeName string
	factory  Factory
	override *Override
	gate     *callGate
	logger   logger.Logger

	handle Handle
	mock   bool
}

func newProxy(name, typeName string, factory Factory, override *Override, gate *callGate, log logger.Logger) *Proxy {
	if gate == nil {
		gate = &callGate{}
	}
	return &Proxy{
		name:     name,
		typeName: typeName,
		factory:  factory,
		override: override,
		gate:     gate,
		logger:   log,
	}
}

// Name returns the name the session is registered under.
func (p *Proxy) Name() string {
	return p.name
}

// Type returns the session type the proxy creates.
func (p *Proxy) Type() string {
	return p.typeName
}

// IsInstantiated reports whether a browser handle currently exists.
func (p *Proxy) IsInstantiated() bool {
	return p.handle != nil
}

// IsMock reports whether the current handle is a test double.
func (p *Proxy) IsMock() bool {
	return p.handle != nil && p.mock
}

func (p *Proxy) suspended() bool {
	return p.gate.suspended
}

// instance returns the handle, creating it on first use.
func (p *Proxy) instance() (Handle, error) {
	if p.handle != nil {
		return p.handle, nil
	}

	if double, ok := p.override.lookup(p.typeName); ok {
		p.handle = double
		p.mock = true
		p.logger.Debug(context.Background(), "using test double for session", map[string]interface{}{
			"session": p.name,
			"type":    p.typeName,
		})
		return p.handle, nil
	}

	h, err := p.factory.Create(p.typeName)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s session %q: %w", p.typeName, p.name, err)
	}
	p.handle = h
	p.mock = false

	p.logger.Info(context.Background(), "browser session started", map[string]interface{}{
		"session": p.name,
		"type":    p.typeName,
	})

	return p.handle, nil
}

// Get opens url, starting the browser if needed.
func (p *Proxy) Get(url string) error {
	if p.suspended() {
		return nil
	}
	h, err := p.instance()
	if err != nil {
		return err
	}
	return h.Navigate(url)
}

// CurrentURL returns the current page URL, or "" if no browser has been started.
func (p *Proxy) CurrentURL() string {
	if p.suspended() || p.handle == nil {
		return ""
	}
	return p.handle.CurrentURL()
}

// Title returns the title of the current page.
func (p *Proxy) Title() (string, error) {
	if p.suspended() {
		return "", nil
	}
	h, err := p.instance()
	if err != nil {
		return "", err
	}
	return h.Title()
}

// PageSource returns the HTML of the current page.
func (p *Proxy) PageSource() (string, error) {
	if p.suspended() {
		return "", nil
	}
	h, err := p.instance()
	if err != nil {
		return "", err
	}
	return h.PageSource()
}

// Do runs fn against the real handle, starting the browser if needed. It is the way to
// reach driver-specific capabilities such as element locating.
func (p *Proxy) Do(fn func(Handle) error) error {
	if p.suspended() {
		return nil
	}
	h, err := p.instance()
	if err != nil {
		return err
	}
	return fn(h)
}

// CaptureEvidence returns a screenshot of the current page. It returns nil without error when
// no browser is running or the handle cannot take screenshots.
func (p *Proxy) CaptureEvidence() ([]byte, error) {
	if p.suspended() || p.handle == nil {
		return nil, nil
	}
	shooter, ok := p.handle.(Screenshotter)
	if !ok {
		return nil, nil
	}
	return shooter.Screenshot()
}

// Reset returns the browser to a blank state if the handle supports it.
func (p *Proxy) Reset() error {
	if p.suspended() || p.handle == nil {
		return nil
	}
	resetter, ok := p.handle.(Resetter)
	if !ok {
		return nil
	}
	return resetter.Reset()
}

// Close closes the browser window and forgets the handle. A later call starts a new browser.
// Close is honoured even while calls are suspended so sessions are always released.
func (p *Proxy) Close() error {
	return p.release(func(h Handle) error { return h.Close() })
}

// Quit shuts the browser down and forgets the handle.
func (p *Proxy) Quit() error {
	return p.release(func(h Handle) error { return h.Quit() })
}

func (p *Proxy) release(fn func(Handle) error) error {
	if p.handle == nil {
		return nil
	}
	h := p.handle
	p.handle = nil
	p.mock = false
	return fn(h)
}
