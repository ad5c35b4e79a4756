package storage

import "context"

// Store defines the interface for client-side credential persistence.
// It holds the single last-used email entry surviving restarts, and the
// long-lived login tokens issued after interactive logins for native hosts.
type Store interface {
	// Last-used email operations
	SaveLastEmail(ctx context.Context, email string) error
	GetLastEmail(ctx context.Context) (string, error)

	// Host token operations
	SaveHostToken(ctx context.Context, host, token string) error
	GetHostToken(ctx context.Context, host string) (string, error)
	DeleteHostToken(ctx context.Context, host string) error
}
