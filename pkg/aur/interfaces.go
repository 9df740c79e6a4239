//go:generate mockgen -destination=mocks/client.go . Client
package aur

import "context"

// Client defines the remote lookup operations against the AUR.
type Client interface {
	// Search performs a single search request. Transport failures match
	// errors.ErrTransport and API-reported failures match errors.ErrApplication.
	Search(ctx context.Context, q Query) (*Response, error)

	// Info fetches detail records for the named packages.
	Info(ctx context.Context, names ...string) ([]PackageDetail, error)

	// Lookup performs Search and folds any error into a failure status.
	Lookup(ctx context.Context, q Query) Status
}
var _ Client = (*HTTPClient)(nil)
