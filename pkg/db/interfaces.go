package db

import "context"

// EventSource provides the three per-band reads the calendar pipeline
// consumes. Each fetch returns the band's entire record set; month filtering
// happens client-side.
type EventSource interface {
	FetchGigs(ctx context.Context, bandID string) ([]Gig, error)
	FetchRehearsals(ctx context.Context, bandID string) ([]Rehearsal, error)
	FetchBlockOuts(ctx context.Context, bandID string) ([]BlockOut, error)
}

// NameResolver resolves member ids to display names in a single batch lookup.
// Resolution is best-effort: callers fall back to a placeholder for absent
// entries and must not fail a refresh on resolver errors.
type NameResolver interface {
	ResolveMemberNames(ctx context.Context, memberIDs []string) (map[string]string, error)
}

// Store is the full persistence surface: the reads the calendar core consumes
// plus the mutations whose callers are expected to invalidate the band's
// cache entries and trigger a refresh afterwards.
type Store interface {
	EventSource
	NameResolver

	ListMembers(ctx context.Context, bandID string) ([]Member, error)

	InsertGig(ctx context.Context, gig *Gig) error
	DeleteGig(ctx context.Context, id string) error
	InsertRehearsal(ctx context.Context, rehearsal *Rehearsal) error
	DeleteRehearsal(ctx context.Context, id string) error
	InsertBlockOuts(ctx context.Context, blockOuts []BlockOut) error
	DeleteBlockOut(ctx context.Context, id string) error
}
