// Package delivery holds the inbound transports of the portal.
package delivery

import "context"

// Delivery is a long-running inbound transport started by the application.
type Delivery interface {
	Serve(ctx context.Context) error
}
