package driven

import (
	"context"

	"github.com/alorle/stream-bridge/internal/catalog"
)

// StreamsAPI defines the interface for the upstream catalog and per-stream detail service.
// This is a driven port implemented by concrete adapters (e.g., HTTP client).
type StreamsAPI interface {
	// FetchCatalog retrieves the full category/stream listing.
	// Transport failures and non-2xx responses return an error; the success
	// flag of a decoded response is left for the caller to inspect.
	FetchCatalog(ctx context.Context) (catalog.Catalog, error)

	// FetchPlaybackURL retrieves the playback URL of a single stream.
	// Returns catalog.ErrMissingCredential without issuing a request when no
	// credential is configured, catalog.ErrUnsuccessful when the API reports
	// failure, and catalog.ErrMissingDetailData or catalog.ErrMissingPlaybackURL
	// when the response lacks the expected fields.
	FetchPlaybackURL(ctx context.Context, id catalog.StreamID) (string, error)
}
