// Package session manages the browser sessions of a running scenario: a goroutine-confined
// registry of named sessions, lazy proxies that start a browser on first real use, and a
// manager resolving session-type names against a driver factory.
package session

import (
	"errors"
)

var (
	// ErrUnsupportedSessionType is returned when a session type name matches no configured type.
	ErrUnsupportedSessionType = errors.New("unsupported session type")

	// ErrNoSessionTypes is returned when a factory supports no session type at all.
	ErrNoSessionTypes = errors.New("no session types configured")
)

// Handle is a live browser automation driver.
type Handle interface {
	// Navigate loads url in the browser.
	Navigate(url string) error

	// CurrentURL returns the URL of the current page.
	CurrentURL() string

	// Title returns the title of the current page.
	Title() (string, error)

	// PageSource returns the HTML of the current page.
	PageSource() (string, error)

	// Close closes the browser window owned by the handle.
	Close() error

	// Quit shuts the whole browser down.
	Quit() error
}

// Screenshotter is implemented by handles able to capture the current page as an image.
type Screenshotter interface {
	Screenshot() ([]byte, error)
}

// Resetter is implemented by handles able to return to a blank state without restarting.
type Resetter interface {
	Reset() error
}
