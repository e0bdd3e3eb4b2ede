package session

import (
	"fmt"
	"sort"
	"strings"
)

// Factory creates real browser handles for the session types it supports.
type Factory interface {
	// Create starts a browser of the given (already resolved) session type.
	Create(typeName string) (Handle, error)

	// SupportedTypes lists the session type names the factory can create.
	SupportedTypes() []string
}

// ResolveType matches name case-insensitively against the types supported by f and returns
// the canonical type name.
func ResolveType(f Factory, name string) (string, error) {
	supported := f.SupportedTypes()
	if len(supported) == 0 {
		return "", ErrNoSessionTypes
	}
	for _, t := range supported {
		if strings.EqualFold(t, strings.TrimSpace(name)) {
			return t, nil
		}
	}

	sorted := append([]string(nil), supported...)
	sort.Strings(sorted)
	return "", fmt.Errorf("%w: %q (supported types: %s)", ErrUnsupportedSessionType, name, strings.Join(sorted, ", "))
}

// StaticFactory creates handles from a fixed table of constructors.
type StaticFactory struct {
	creators map[string]func() (Handle, error)
	order    []string
}

// NewStaticFactory creates a factory backed by the given constructors, keyed by type name.
func NewStaticFactory(creators map[string]func() (Handle, error)) *StaticFactory {
	order := make([]string, 0, len(creators))
	for name := range creators {
		order = append(order, name)
	}
	sort.Strings(order)
	return &StaticFactory{creators: creators, order: order}
}

// Create runs the constructor registered for typeName.
func (f *StaticFactory) Create(typeName string) (Handle, error) {
	create, ok := f.creators[typeName]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSessionType, typeName)
	}
	return create()
}

// SupportedTypes returns the registered type names in sorted order.
func (f *StaticFactory) SupportedTypes() []string {
	return append([]string(nil), f.order...)
}
