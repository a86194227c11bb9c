package ports

import (
	"context"

	"github.com/bft-labs/feedview/internal/domain"
)

// Subscription identifies a live query registered with a DataSource.
type Subscription struct {
	ID string
}

// Valid reports whether the subscription refers to a registered query.
func (s Subscription) Valid() bool {
	return s.ID != ""
}

// ChangeFunc receives a fresh result set whenever the underlying entries change.
// A non-nil err means the source was torn down or became unavailable; rs is
// empty in that case. Implementations may call it from any goroutine.
type ChangeFunc func(rs domain.ResultSet, err error)

// DataSource is an observable, queryable store of synced entries.
type DataSource interface {
	// Query registers a live query and returns the current result with it.
	// onChange is invoked on every later change until the subscription is cancelled.
	Query(ctx context.Context, q domain.Query, onChange ChangeFunc) (Subscription, domain.ResultSet, error)

	// Cancel releases a subscription. Unknown or already cancelled
	// subscriptions are ignored.
	Cancel(sub Subscription) error
}
