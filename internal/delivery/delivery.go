// Package delivery defines the contract shared by all transport frontends.
package delivery

import "context"

// Delivery is a transport frontend (HTTP today) managed by the composition root.
type Delivery interface {
	// Serve blocks serving requests until the listener fails or is shut down.
	Serve(ctx context.Context) error
}
