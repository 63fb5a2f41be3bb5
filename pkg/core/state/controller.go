package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bandhq/backline/pkg/core/calendar"
	"github.com/bandhq/backline/pkg/core/services"
	"github.com/bandhq/backline/pkg/db"
	"github.com/bandhq/backline/pkg/eventcache"
)

// Phase is the controller's lifecycle phase.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseError   Phase = "error"
)

// Month identifies a selected calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// Options tunes a Controller. Zero values pick sensible defaults.
type Options struct {
	Clock         func() time.Time // defaults to time.Now
	HorizonMonths int              // recurrence expansion horizon, defaults to 6
}

// Controller owns the calendar read model for the currently selected band.
// It runs the phase machine Idle -> Loading -> {Loaded | Error}, re-entering
// Loading on band change or manual refresh, and writes each successful
// refresh through to the month cache.
//
// Each refresh captures a monotonic generation; a result is published only if
// its generation is still current, so an overlapping refresh cannot overwrite
// newer state with stale data.
type Controller struct {
	source   db.EventSource
	resolver db.NameResolver
	cache    *eventcache.Cache
	logger   *zap.Logger
	clock    func() time.Time
	horizon  int

	mu             sync.Mutex
	phase          Phase
	errMsg         string
	bandID         string
	lastLoadedBand string
	generation     uint64
	selected       Month
	events         []calendar.Event
	markers        map[calendar.DayKey]*calendar.DayMarkers
	spans          []calendar.BlockOutSpan
}

// NewController creates an idle controller with the selected month set to the
// clock's current month.
func NewController(source db.EventSource, resolver db.NameResolver, cache *eventcache.Cache, logger *zap.Logger, opts Options) *Controller {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	horizon := opts.HorizonMonths
	if horizon <= 0 {
		horizon = 6
	}

	now := clock()
	return &Controller{
		source:   source,
		resolver: resolver,
		cache:    cache,
		logger:   logger,
		clock:    clock,
		horizon:  horizon,
		phase:    PhaseIdle,
		selected: Month{Year: now.Year(), Month: now.Month()},
		markers:  map[calendar.DayKey]*calendar.DayMarkers{},
	}
}

// SetBand switches the active band. An empty id resets to Idle and clears the
// last-loaded-band guard so a later re-selection of the same band loads
// again. A non-empty id triggers exactly one load; re-selecting the band that
// is already loaded (or loading) is a no-op.
func (c *Controller) SetBand(ctx context.Context, bandID string) error {
	c.mu.Lock()
	if bandID == "" {
		c.bandID = ""
		c.lastLoadedBand = ""
		c.phase = PhaseIdle
		c.errMsg = ""
		c.clearModelLocked()
		c.mu.Unlock()
		return nil
	}
	if bandID == c.lastLoadedBand {
		c.mu.Unlock()
		return nil
	}
	c.bandID = bandID
	c.lastLoadedBand = bandID
	c.mu.Unlock()

	return c.load(ctx, bandID)
}

// Refresh re-runs the fetch pipeline for the current band. With no band
// selected it is a no-op.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	bandID := c.bandID
	c.mu.Unlock()

	if bandID == "" {
		return nil
	}
	return c.load(ctx, bandID)
}

// load runs one pipeline generation and publishes the result only if no newer
// generation has started since.
func (c *Controller) load(ctx context.Context, bandID string) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.phase = PhaseLoading
	c.errMsg = ""
	c.mu.Unlock()

	data, err := services.LoadCalendar(ctx, c.source, c.resolver, c.logger, bandID, c.horizon)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Debug("Discarding stale refresh result",
			zap.String("band_id", bandID),
			zap.Uint64("generation", gen))
		return nil
	}

	if err != nil {
		c.phase = PhaseError
		c.errMsg = fmt.Sprintf("Failed to load events: %v", err)
		c.clearModelLocked()
		return err
	}

	c.cache.Put(bandID, data.Events)

	c.phase = PhaseLoaded
	c.events = data.Events
	c.markers = data.Markers
	c.spans = data.Spans
	return nil
}

func (c *Controller) clearModelLocked() {
	c.events = nil
	c.spans = nil
	c.markers = map[calendar.DayKey]*calendar.DayMarkers{}
}

// InvalidateBand drops the band's cache entries. Callers invoke this after
// any external mutation, then trigger a refresh.
func (c *Controller) InvalidateBand(bandID string) {
	c.cache.Invalidate(bandID)
}

// Reset tears the controller down to Idle and wipes the cache. Used on
// logout.
func (c *Controller) Reset() {
	c.cache.Clear()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.bandID = ""
	c.lastLoadedBand = ""
	c.phase = PhaseIdle
	c.errMsg = ""
	c.clearModelLocked()
}

// PreviousMonth moves the selected month back one month. Navigation never
// triggers a fetch; all months are already present in the event list.
func (c *Controller) PreviousMonth() {
	c.shiftMonth(-1)
}

// NextMonth moves the selected month forward one month.
func (c *Controller) NextMonth() {
	c.shiftMonth(1)
}

func (c *Controller) shiftMonth(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := time.Date(c.selected.Year, c.selected.Month, 1, 12, 0, 0, 0, time.Local).AddDate(0, delta, 0)
	c.selected = Month{Year: t.Year(), Month: t.Month()}
}

// GoToToday selects the clock's current month.
func (c *Controller) GoToToday() {
	now := c.clock()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = Month{Year: now.Year(), Month: now.Month()}
}

// SelectMonth jumps directly to the given month.
func (c *Controller) SelectMonth(year int, month time.Month) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = Month{Year: year, Month: month}
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Err returns the current error message, empty outside the Error phase.
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// BandID returns the active band id, empty when idle.
func (c *Controller) BandID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bandID
}

// SelectedMonth returns the currently selected month.
func (c *Controller) SelectedMonth() Month {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Events returns a copy of the full sorted event list from the last
// successful refresh.
func (c *Controller) Events() []calendar.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]calendar.Event, len(c.events))
	copy(out, c.events)
	return out
}

// EventsInSelectedMonth filters the event list down to the selected month,
// preserving sort order.
func (c *Controller) EventsInSelectedMonth() []calendar.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []calendar.Event
	for _, ev := range c.events {
		if ev.Date.Year() == c.selected.Year && ev.Date.Month() == c.selected.Month {
			out = append(out, ev)
		}
	}
	return out
}

// EventsOn returns the events on a single day, preserving sort order.
func (c *Controller) EventsOn(day calendar.DayKey) []calendar.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []calendar.Event
	for _, ev := range c.events {
		if ev.DayKey() == day {
			out = append(out, ev)
		}
	}
	return out
}

// MarkersFor looks up one day's markers. A missing day means "no markers",
// never an error.
func (c *Controller) MarkersFor(day calendar.DayKey) (calendar.DayMarkers, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.markers[day]
	if !ok {
		return calendar.DayMarkers{}, false
	}
	return *m, true
}

// Spans returns the grouped block-out spans from the last successful refresh.
func (c *Controller) Spans() []calendar.BlockOutSpan {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]calendar.BlockOutSpan, len(c.spans))
	copy(out, c.spans)
	return out
}

// CachedMonth exposes the month cache read path for callers that can render
// from a fresh cached month without forcing a refresh.
func (c *Controller) CachedMonth(bandID string, year int, month time.Month) *eventcache.MonthData {
	return c.cache.Get(bandID, year, month)
}
