package eventcache

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bandhq/backline/pkg/core/calendar"
)

// DefaultTTL is how long a cached month stays fresh.
const DefaultTTL = 5 * time.Minute

// MonthData is one cached month of calendar events for one band.
type MonthData struct {
	Events    []calendar.Event
	FetchedAt time.Time
}

// Cache is an in-memory, per-(band, year, month) cache of aggregated calendar
// events. Entries expire after a fixed TTL and are removed by band-prefix
// invalidation after mutations, or wholesale on logout. The cache is
// best-effort: a failed refresh never evicts existing entries — only a
// successful overwrite or an explicit invalidation does.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]MonthData
}

// New creates a cache with the given TTL. A nil clock uses time.Now; tests
// inject a fake clock to exercise expiry.
func New(ttl time.Duration, clock func() time.Time) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if clock == nil {
		clock = time.Now
	}
	return &Cache{
		ttl:     ttl,
		now:     clock,
		entries: make(map[string]MonthData),
	}
}

func key(bandID string, year int, month time.Month) string {
	return fmt.Sprintf("%s-%04d-%02d", bandID, year, int(month))
}

// Get returns the cached month, or nil when absent or stale. Stale entries
// are never served; they stay in place until overwritten or invalidated.
func (c *Cache) Get(bandID string, year int, month time.Month) *MonthData {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key(bandID, year, month)]
	if !ok {
		return nil
	}
	if c.now().Sub(entry.FetchedAt) > c.ttl {
		return nil
	}
	return &entry
}

// Put groups the event list by each event's own (year, month) and overwrites
// one entry per distinct month present, all stamped with the current time.
// Months not present in the list are left untouched.
func (c *Cache) Put(bandID string, events []calendar.Event) {
	byMonth := make(map[string][]calendar.Event)
	for _, ev := range events {
		k := key(bandID, ev.Date.Year(), ev.Date.Month())
		byMonth[k] = append(byMonth[k], ev)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	fetchedAt := c.now()
	for k, monthEvents := range byMonth {
		c.entries[k] = MonthData{Events: monthEvents, FetchedAt: fetchedAt}
	}
}

// Invalidate removes every entry belonging to the band, leaving other bands'
// entries untouched. Called after external mutations to force the next read
// to refetch.
func (c *Cache) Invalidate(bandID string) {
	prefix := bandID + "-"

	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
}

// Clear wipes the cache unconditionally. Used on logout or band teardown.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]MonthData)
}

// Len reports the number of resident entries, stale ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}
