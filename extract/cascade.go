// Package extract implements the listing-extraction cascade: an
// ordered set of strategies for recovering raw listing candidates from
// a rendered page, tried until one succeeds. Stages hand their raw
// output to the normalizer unchanged; no stage normalizes internally.
package extract

import (
	"context"
	"log/slog"

	"github.com/ysmood/gson"
)

// Stage is one extraction strategy. Extract reports (records, true)
// when the strategy recovered at least one raw candidate, and
// (nil, false) on a miss. A miss is never an error — the cascade just
// moves on.
type Stage struct {
	Name    string
	Extract func(ctx context.Context) ([]gson.JSON, bool)
}

// Run tries the stages in order and returns the raw candidates of the
// first stage that yields any, together with that stage's name.
// Exhausting every stage yields (nil, "") — an empty result is a
// valid, if undesirable, outcome for a run.
func Run(ctx context.Context, stages []Stage) ([]gson.JSON, string) {
	for _, st := range stages {
		if ctx.Err() != nil {
			slog.Warn("cascade aborted", "error", ctx.Err())
			return nil, ""
		}
		records, ok := st.Extract(ctx)
		if ok && len(records) > 0 {
			slog.Debug("cascade stage hit", "stage", st.Name, "records", len(records))
			return records, st.Name
		}
		slog.Debug("cascade stage miss", "stage", st.Name)
	}
	return nil, ""
}
