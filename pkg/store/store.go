package store

// CounterStore records successful deliveries per user. A user record is
// created lazily on first increment with count 1; subsequent increments
// bump it. Implementations must be safe for concurrent use.
type CounterStore interface {
	Increment(userID int64) error
	Count(userID int64) (int64, error)
	Close() error
}
