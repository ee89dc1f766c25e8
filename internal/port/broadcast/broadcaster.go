// Package broadcast defines the port for pushing real-time events to
// connected clients.
package broadcast

import "context"

// Broadcaster sends real-time events to connected clients. Events are
// delivered only to clients of the tenant carried in the context.
type Broadcaster interface {
	BroadcastEvent(ctx context.Context, eventType string, payload any)
}
