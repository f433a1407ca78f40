package api

import (
	"context"
	"time"
)

// QueryTimeout bounds storage access from background jobs and handlers.
const QueryTimeout = 10 * time.Second

// WithQueryTimeout creates a context with the storage query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}
