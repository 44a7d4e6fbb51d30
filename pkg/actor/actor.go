// Package actor identifies who performs a mutation, for the audit trail on
// stock movements and supplier approvals.
package actor

import "context"

// Actor is the entity performing an action. The zero value means the
// action was system-initiated (scheduler, scan delivery).
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// String returns an identifier suitable for the movements audit column
func (a *Actor) String() string {
	if a == nil || a.ID == "" {
		return "system"
	}
	return a.ID
}

// IsSystem reports whether the actor represents the system itself
func (a *Actor) IsSystem() bool {
	return a == nil || a.ID == "" || a.ID == "system"
}

type contextKey string

const actorContextKey contextKey = "actor"

// FromContext retrieves the Actor from the context. Returns nil for
// system-initiated operations.
func FromContext(ctx context.Context) *Actor {
	if ctx == nil {
		return nil
	}
	a, ok := ctx.Value(actorContextKey).(*Actor)
	if !ok {
		return nil
	}
	return a
}

// WithActor returns a new context with the Actor attached
func WithActor(ctx context.Context, a *Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorContextKey, a)
}

// System returns the Actor used for background and scheduled operations
func System() *Actor {
	return &Actor{ID: "system"}
}
