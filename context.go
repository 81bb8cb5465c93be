package sharedprefs

import (
	"context"
	"fmt"
)

type managerKey struct{}

// NewContext returns a copy of ctx carrying m as the ambient preference store.
func NewContext(ctx context.Context, m *Manager) context.Context {
	return context.WithValue(ctx, managerKey{}, m)
}

// FromContext returns the Manager carried by ctx, if any.
func FromContext(ctx context.Context) (*Manager, bool) {
	m, ok := ctx.Value(managerKey{}).(*Manager)
	return m, ok && m != nil
}

// For returns the named store instance of the Manager carried by ctx.
func For(ctx context.Context, name string) (*Preferences, error) {
	m, ok := FromContext(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: no preference manager in context", ErrStorageUnavailable)
	}
	return m.Preferences(name), nil
}
