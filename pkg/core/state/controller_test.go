package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bandhq/backline/pkg/core/calendar"
	"github.com/bandhq/backline/pkg/db"
	"github.com/bandhq/backline/pkg/eventcache"
)

// mockSource implements db.EventSource and db.NameResolver. gigsHook, when
// set, intercepts gig fetches so tests can block or fail a refresh.
type mockSource struct {
	mu         sync.Mutex
	gigs       []db.Gig
	rehearsals []db.Rehearsal
	blockOuts  []db.BlockOut
	names      map[string]string
	fetchCount int

	gigsHook func() ([]db.Gig, error)
}

func (m *mockSource) FetchGigs(ctx context.Context, bandID string) ([]db.Gig, error) {
	m.mu.Lock()
	m.fetchCount++
	hook := m.gigsHook
	gigs := m.gigs
	m.mu.Unlock()

	if hook != nil {
		return hook()
	}
	return gigs, nil
}

func (m *mockSource) FetchRehearsals(ctx context.Context, bandID string) ([]db.Rehearsal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rehearsals, nil
}

func (m *mockSource) FetchBlockOuts(ctx context.Context, bandID string) ([]db.BlockOut, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.blockOuts, nil
}

func (m *mockSource) ResolveMemberNames(ctx context.Context, memberIDs []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.names, nil
}

func (m *mockSource) fetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCount
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.Local)
}

func newTestController(source *mockSource) *Controller {
	cache := eventcache.New(5*time.Minute, nil)
	return NewController(source, source, cache, zap.NewNop(), Options{})
}

func TestController_StartsIdle(t *testing.T) {
	c := newTestController(&mockSource{})
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Empty(t, c.BandID())
	assert.Empty(t, c.Events())
}

func TestController_SetBandLoads(t *testing.T) {
	source := &mockSource{
		gigs: []db.Gig{{ID: "g1", BandID: "band-1", Date: day(2025, 6, 7), StartTime: "20:00"}},
	}
	c := newTestController(source)

	err := c.SetBand(context.Background(), "band-1")
	require.NoError(t, err)

	assert.Equal(t, PhaseLoaded, c.Phase())
	require.Len(t, c.Events(), 1)

	markers, ok := c.MarkersFor("2025-06-07")
	require.True(t, ok)
	assert.True(t, markers.Gig)

	_, ok = c.MarkersFor("2025-06-08")
	assert.False(t, ok, "missing day means no markers, not an error")
}

func TestController_SameBandLoadsOnce(t *testing.T) {
	source := &mockSource{}
	c := newTestController(source)
	ctx := context.Background()

	require.NoError(t, c.SetBand(ctx, "band-1"))
	require.NoError(t, c.SetBand(ctx, "band-1"))
	require.NoError(t, c.SetBand(ctx, "band-1"))

	assert.Equal(t, 1, source.fetches())
}

func TestController_EmptyBandResetsGuard(t *testing.T) {
	source := &mockSource{}
	c := newTestController(source)
	ctx := context.Background()

	require.NoError(t, c.SetBand(ctx, "band-1"))
	require.NoError(t, c.SetBand(ctx, ""))

	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Empty(t, c.Events())

	// Re-selecting the same band after a reset loads again.
	require.NoError(t, c.SetBand(ctx, "band-1"))
	assert.Equal(t, 2, source.fetches())
	assert.Equal(t, PhaseLoaded, c.Phase())
}

func TestController_FetchFailureEntersErrorState(t *testing.T) {
	source := &mockSource{
		gigsHook: func() ([]db.Gig, error) { return nil, errors.New("connection refused") },
	}
	c := newTestController(source)

	err := c.SetBand(context.Background(), "band-1")
	require.Error(t, err)

	assert.Equal(t, PhaseError, c.Phase())
	assert.Contains(t, c.Err(), "Failed to load events:")
	assert.Contains(t, c.Err(), "connection refused")
	assert.Empty(t, c.Events(), "error replaces the model with empty defaults")
}

func TestController_RefreshRecoversFromError(t *testing.T) {
	source := &mockSource{
		gigsHook: func() ([]db.Gig, error) { return nil, errors.New("boom") },
	}
	c := newTestController(source)
	ctx := context.Background()

	require.Error(t, c.SetBand(ctx, "band-1"))
	require.Equal(t, PhaseError, c.Phase())

	source.mu.Lock()
	source.gigsHook = nil
	source.gigs = []db.Gig{{ID: "g1", BandID: "band-1", Date: day(2025, 6, 7)}}
	source.mu.Unlock()

	require.NoError(t, c.Refresh(ctx))
	assert.Equal(t, PhaseLoaded, c.Phase())
	assert.Empty(t, c.Err())
	assert.Len(t, c.Events(), 1)
}

func TestController_RefreshWithoutBandIsNoop(t *testing.T) {
	source := &mockSource{}
	c := newTestController(source)

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Equal(t, 0, source.fetches())
}

func TestController_MonthNavigationNeverFetches(t *testing.T) {
	source := &mockSource{}
	c := newTestController(source)
	ctx := context.Background()

	require.NoError(t, c.SetBand(ctx, "band-1"))
	fetchesAfterLoad := source.fetches()

	c.SelectMonth(2025, time.June)
	c.NextMonth()
	assert.Equal(t, Month{Year: 2025, Month: time.July}, c.SelectedMonth())

	c.PreviousMonth()
	c.PreviousMonth()
	assert.Equal(t, Month{Year: 2025, Month: time.May}, c.SelectedMonth())

	c.GoToToday()
	now := time.Now()
	assert.Equal(t, Month{Year: now.Year(), Month: now.Month()}, c.SelectedMonth())

	assert.Equal(t, fetchesAfterLoad, source.fetches())
}

func TestController_MonthNavigationAcrossYearBoundary(t *testing.T) {
	c := newTestController(&mockSource{})

	c.SelectMonth(2025, time.December)
	c.NextMonth()
	assert.Equal(t, Month{Year: 2026, Month: time.January}, c.SelectedMonth())

	c.PreviousMonth()
	assert.Equal(t, Month{Year: 2025, Month: time.December}, c.SelectedMonth())
}

func TestController_EventsInSelectedMonth(t *testing.T) {
	source := &mockSource{
		gigs: []db.Gig{
			{ID: "june", BandID: "band-1", Date: day(2025, 6, 7)},
			{ID: "july", BandID: "band-1", Date: day(2025, 7, 7)},
		},
	}
	c := newTestController(source)

	require.NoError(t, c.SetBand(context.Background(), "band-1"))

	c.SelectMonth(2025, time.June)
	events := c.EventsInSelectedMonth()
	require.Len(t, events, 1)
	assert.Equal(t, "june", events[0].ID)

	c.NextMonth()
	events = c.EventsInSelectedMonth()
	require.Len(t, events, 1)
	assert.Equal(t, "july", events[0].ID)
}

func TestController_SuccessfulLoadWritesThroughToCache(t *testing.T) {
	source := &mockSource{
		gigs: []db.Gig{{ID: "g1", BandID: "band-1", Date: day(2025, 6, 7)}},
	}
	c := newTestController(source)

	require.NoError(t, c.SetBand(context.Background(), "band-1"))

	cached := c.CachedMonth("band-1", 2025, time.June)
	require.NotNil(t, cached)
	assert.Len(t, cached.Events, 1)
}

func TestController_InvalidateBandDropsCache(t *testing.T) {
	source := &mockSource{
		gigs: []db.Gig{{ID: "g1", BandID: "band-1", Date: day(2025, 6, 7)}},
	}
	c := newTestController(source)

	require.NoError(t, c.SetBand(context.Background(), "band-1"))
	require.NotNil(t, c.CachedMonth("band-1", 2025, time.June))

	c.InvalidateBand("band-1")
	assert.Nil(t, c.CachedMonth("band-1", 2025, time.June))
}

func TestController_ResetClearsEverything(t *testing.T) {
	source := &mockSource{
		gigs: []db.Gig{{ID: "g1", BandID: "band-1", Date: day(2025, 6, 7)}},
	}
	c := newTestController(source)

	require.NoError(t, c.SetBand(context.Background(), "band-1"))
	c.Reset()

	assert.Equal(t, PhaseIdle, c.Phase())
	assert.Empty(t, c.BandID())
	assert.Empty(t, c.Events())
	assert.Nil(t, c.CachedMonth("band-1", 2025, time.June))
}

func TestController_StaleGenerationIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	inFlight := make(chan struct{})
	var once sync.Once

	source := &mockSource{}
	source.gigsHook = func() ([]db.Gig, error) {
		var first bool
		once.Do(func() { first = true })
		if first {
			close(inFlight)
			<-release
			return []db.Gig{{ID: "stale", BandID: "band-1", Date: day(2025, 6, 1)}}, nil
		}
		return []db.Gig{{ID: "fresh", BandID: "band-1", Date: day(2025, 6, 2)}}, nil
	}

	c := newTestController(source)
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.SetBand(ctx, "band-1")
	}()

	<-inFlight

	// A second refresh starts while the first fetch is still in flight and
	// completes first.
	require.NoError(t, c.Refresh(ctx))
	require.Len(t, c.Events(), 1)
	assert.Equal(t, "fresh", c.Events()[0].ID)

	// The first pipeline completes late; its result must be discarded.
	close(release)
	wg.Wait()

	require.Len(t, c.Events(), 1)
	assert.Equal(t, "fresh", c.Events()[0].ID)
	assert.Equal(t, PhaseLoaded, c.Phase())
}

func TestController_EventsOn(t *testing.T) {
	source := &mockSource{
		gigs: []db.Gig{{ID: "g1", BandID: "band-1", Date: day(2025, 6, 7), StartTime: "20:00"}},
		blockOuts: []db.BlockOut{
			{ID: "b1", MemberID: "u1", BandID: "band-1", Date: day(2025, 6, 7), Reason: "away"},
		},
	}
	c := newTestController(source)

	require.NoError(t, c.SetBand(context.Background(), "band-1"))

	events := c.EventsOn(calendar.DayKey("2025-06-07"))
	require.Len(t, events, 2)
	assert.Equal(t, "g1", events[0].ID, "timed gig sorts before untimed block-out")
	assert.True(t, events[1].IsBlockOut())

	assert.Empty(t, c.EventsOn("2025-06-08"))
}
