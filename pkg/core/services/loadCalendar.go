package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bandhq/backline/pkg/core/calendar"
	"github.com/bandhq/backline/pkg/db"
)

// CalendarData is the complete read model produced by one band refresh:
// the merged, sorted event list, the per-day marker map, and the grouped
// block-out spans.
type CalendarData struct {
	Events  []calendar.Event
	Markers map[calendar.DayKey]*calendar.DayMarkers
	Spans   []calendar.BlockOutSpan
}

// LoadCalendar runs the full fetch pipeline for a band: the three source
// fetches run concurrently and any single failure fails the whole refresh —
// there is no partial-success path. Display-name resolution is best-effort
// and degrades to the "Member" fallback. Rehearsal recurrence rules are
// expanded up to horizonMonths from each rehearsal's seed date.
func LoadCalendar(ctx context.Context, source db.EventSource, resolver db.NameResolver, logger *zap.Logger, bandID string, horizonMonths int) (*CalendarData, error) {
	if bandID == "" {
		return nil, fmt.Errorf("no band selected")
	}
	if horizonMonths <= 0 {
		horizonMonths = 6
	}

	logger.Info("Loading band calendar", zap.String("band_id", bandID))

	var (
		gigs       []db.Gig
		rehearsals []db.Rehearsal
		blockOuts  []db.BlockOut
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if gigs, err = source.FetchGigs(gctx, bandID); err != nil {
			return fmt.Errorf("failed to fetch gigs: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if rehearsals, err = source.FetchRehearsals(gctx, bandID); err != nil {
			return fmt.Errorf("failed to fetch rehearsals: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if blockOuts, err = source.FetchBlockOuts(gctx, bandID); err != nil {
			return fmt.Errorf("failed to fetch block-outs: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug("Fetched band events",
		zap.Int("gigs", len(gigs)),
		zap.Int("rehearsals", len(rehearsals)),
		zap.Int("block_outs", len(blockOuts)))

	names := resolveBlockOutNames(ctx, resolver, logger, blockOuts)
	spans := calendar.GroupBlockOuts(blockOuts, names)

	gigEvents := make([]calendar.Event, 0, len(gigs))
	for _, gig := range gigs {
		gigEvents = append(gigEvents, calendar.Event{
			ID:        gig.ID,
			Kind:      calendar.KindGig,
			Title:     gig.Title,
			Date:      gig.Date,
			StartTime: gig.StartTime,
		})
	}

	rehearsalEvents := expandRehearsals(rehearsals, horizonMonths, logger)

	blockOutEvents := make([]calendar.Event, 0, len(spans))
	for i := range spans {
		span := spans[i]
		blockOutEvents = append(blockOutEvents, calendar.Event{
			ID:    fmt.Sprintf("blockout:%s:%s", span.MemberID, calendar.DayKeyFor(span.Start)),
			Kind:  calendar.KindBlockOut,
			Title: span.Reason,
			Date:  span.Start,
			Span:  &span,
		})
	}

	events := make([]calendar.Event, 0, len(gigEvents)+len(rehearsalEvents)+len(blockOutEvents))
	events = append(events, gigEvents...)
	events = append(events, rehearsalEvents...)
	events = append(events, blockOutEvents...)
	calendar.SortEvents(events)

	markers := calendar.BuildMarkers(gigEvents, rehearsalEvents, spans)

	logger.Info("Band calendar loaded",
		zap.String("band_id", bandID),
		zap.Int("events", len(events)),
		zap.Int("marked_days", len(markers)))

	return &CalendarData{
		Events:  events,
		Markers: markers,
		Spans:   spans,
	}, nil
}

// resolveBlockOutNames batches the distinct block-out author ids through the
// resolver. Any resolver error is logged and suppressed; the caller falls
// back to the placeholder name for every author.
func resolveBlockOutNames(ctx context.Context, resolver db.NameResolver, logger *zap.Logger, blockOuts []db.BlockOut) map[string]string {
	seen := make(map[string]bool)
	var ids []string
	for _, b := range blockOuts {
		if !seen[b.MemberID] {
			seen[b.MemberID] = true
			ids = append(ids, b.MemberID)
		}
	}
	if len(ids) == 0 {
		return map[string]string{}
	}

	names, err := resolver.ResolveMemberNames(ctx, ids)
	if err != nil {
		logger.Warn("Failed to resolve member names, falling back to placeholder", zap.Error(err))
		return map[string]string{}
	}
	return names
}

// expandRehearsals turns rehearsal records into calendar events, expanding
// any recurrence rule into one event per occurrence within the horizon. An
// unparsable rule keeps the seed date only rather than failing the refresh.
func expandRehearsals(rehearsals []db.Rehearsal, horizonMonths int, logger *zap.Logger) []calendar.Event {
	events := make([]calendar.Event, 0, len(rehearsals))
	for _, reh := range rehearsals {
		dates := []time.Time{reh.Date}
		if reh.Recurrence != "" {
			horizon := reh.Date.AddDate(0, horizonMonths, 0)
			expanded, err := calendar.ExpandRecurrence(reh.Recurrence, reh.Date, horizon)
			if err != nil {
				logger.Warn("Skipping invalid rehearsal recurrence rule",
					zap.String("rehearsal_id", reh.ID),
					zap.Error(err))
			} else {
				dates = expanded
			}
		}

		for i, date := range dates {
			id := reh.ID
			if i > 0 {
				id = fmt.Sprintf("%s:%s", reh.ID, calendar.DayKeyFor(date))
			}
			events = append(events, calendar.Event{
				ID:        id,
				Kind:      calendar.KindRehearsal,
				Title:     reh.Location,
				Date:      date,
				StartTime: reh.StartTime,
				SetlistID: reh.SetlistID,
			})
		}
	}
	return events
}
