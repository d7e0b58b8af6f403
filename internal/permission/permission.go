// Package permission carries the caller's granted capabilities through
// the request context. Granting itself happens at the HTTP boundary.
package permission

import (
	"context"
	"errors"
)

// Capability names an action a caller may be granted.
type Capability string

const (
	// ManageShipping gates channel listings and excluded products.
	ManageShipping Capability = "manage_shipping"
)

// ErrDenied signals a capability check failure. It is distinct from an
// absent value so clients can tell "no data" from "not permitted".
var ErrDenied = errors.New("permission_denied")

type capabilityKey struct{}

// WithCapabilities returns a context granting the given capabilities.
func WithCapabilities(ctx context.Context, caps ...Capability) context.Context {
	granted := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		granted[c] = struct{}{}
	}
	return context.WithValue(ctx, capabilityKey{}, granted)
}

// HasCapability reports whether the context grants the capability.
func HasCapability(ctx context.Context, cap Capability) bool {
	if ctx == nil {
		return false
	}
	granted, ok := ctx.Value(capabilityKey{}).(map[Capability]struct{})
	if !ok {
		return false
	}
	_, ok = granted[cap]
	return ok
}
