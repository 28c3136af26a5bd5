package extract

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/ysmood/gson"
)

// APIPathPattern matches the request paths of the site's listing API
// calls. The session layer feeds every intercepted response whose URL
// matches this pattern into the stage-1 channel.
var APIPathPattern = regexp.MustCompile(`search-offers|officeFeed|find`)

// responseKeyPaths are the known locations of the listings array in
// API response bodies, highest-confidence first.
var responseKeyPaths = [][]string{
	{"data", "offersSerialized"},
	{"data", "results", "offers"},
	{"results", "offers"},
	{"offers"},
	{"items"},
}

// NetworkStage builds the live-interception stage. It waits up to
// timeout for a captured API response body that carries a non-empty
// listings array. A timeout is a cascade miss, not an error.
func NetworkStage(bodies <-chan []byte, timeout time.Duration) Stage {
	return Stage{
		Name: "network",
		Extract: func(ctx context.Context) ([]gson.JSON, bool) {
			timer := time.NewTimer(timeout)
			defer timer.Stop()
			for {
				select {
				case body, open := <-bodies:
					if !open {
						return nil, false
					}
					if records, ok := DecodeAPIResponse(body); ok {
						return records, true
					}
					// Matched the API path but carried no listings;
					// keep waiting for the next response.
				case <-timer.C:
					slog.Debug("network interception timed out, falling through")
					return nil, false
				case <-ctx.Done():
					return nil, false
				}
			}
		},
	}
}

// DecodeAPIResponse parses an intercepted response body and looks for
// a listings array under the known response key paths.
func DecodeAPIResponse(body []byte) ([]gson.JSON, bool) {
	j, ok := decode(body)
	if !ok {
		slog.Warn("intercepted response is not valid JSON", "bytes", len(body))
		return nil, false
	}
	records, ok := listingsUnder(j, responseKeyPaths)
	if !ok {
		slog.Warn("unknown API response structure", "bytes", len(body))
	}
	return records, ok
}
