package contract

import "context"

// Agent turns a conversation into a user-facing reply.
type Agent interface {
	Generate(ctx context.Context, turns []Turn) (string, error)
}

// NearbyFinder resolves an address and returns nearby places grouped by
// category. Geocoding failure fails the whole call; individual category
// failures degrade to empty entries.
type NearbyFinder interface {
	FindNearby(ctx context.Context, address string, categories []string) (CategoryResults, error)
}

// MemoryStore persists conversation turns keyed by context id. Writes are
// best-effort from the caller's point of view.
type MemoryStore interface {
	AppendTurn(ctx context.Context, contextID string, turn Turn) error
	RecentTurns(ctx context.Context, contextID string, limit int) ([]Turn, error)
}
