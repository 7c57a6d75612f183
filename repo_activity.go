package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Activities persists audit rows and lets the admin UI read them back.
// Record implements ActivitySink so the repository can be handed straight
// to the authenticator.
type Activities interface {
	ActivitySink
	ListRecent(ctx context.Context, limit int) ([]*AuthActivity, error)
}

type activities struct {
	db    *bun.DB
	clock Clock
}

var _ Activities = (*activities)(nil)

// NewActivitiesRepository returns the bun-backed audit repository.
func NewActivitiesRepository(db *bun.DB) Activities {
	return &activities{db: db, clock: systemClock{}}
}

// Record normalizes and appends one audit row. Append-only: nothing in this
// package updates or deletes auth_activity rows.
func (a *activities) Record(ctx context.Context, event ActivityEvent) error {
	event = NormalizeActivityEvent(event, a.clock.Now())

	occurredAt := event.OccurredAt
	row := &AuthActivity{
		ID:            uuid.New(),
		EventKind:     string(event.EventType),
		UserID:        event.UserID,
		Username:      event.Username,
		SourceAddress: event.SourceAddress,
		UserAgent:     event.UserAgent,
		Detail:        event.Detail,
		CreatedAt:     &occurredAt,
	}

	if _, err := a.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not record auth activity")
	}

	return nil
}

func (a *activities) ListRecent(ctx context.Context, limit int) ([]*AuthActivity, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []*AuthActivity
	err := a.db.NewSelect().
		Model(&rows).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)

	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not list auth activity")
	}

	return rows, nil
}
