package ics

import (
	"context"
	"errors"

	appLog "kioskcal/internal/log"
	"kioskcal/internal/model"
)

// Collect fetches, parses and expands every source into board events.
// Individual feed failures are logged and skipped; the call only fails when
// every source failed.
func Collect(ctx context.Context, f *Fetcher, sources []Source, cfg ExpandConfig) ([]model.Event, error) {
	if len(sources) == 0 {
		return nil, nil
	}

	results, errs := f.FetchAll(ctx, sources)
	if len(results) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	parsed := make([]ParsedEvent, 0)
	for _, res := range results {
		evs, err := ParseICS(res.Source, res.Body)
		if err != nil {
			appLog.Error("ics collect: parse failed for source", err, "id", res.Source.ID)
			continue
		}
		parsed = append(parsed, evs...)
	}

	return ToEvents(parsed, cfg)
}
