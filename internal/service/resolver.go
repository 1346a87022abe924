package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/udfnd/credittalk-admin-sub000/internal/model"
)

// Addressing specifies which users' devices a job targets. Explicit ids
// take precedence over the all-users audience; a foreign reference resolves
// to the entity owner's id first.
type Addressing struct {
	ExplicitUserIDs []uuid.UUID
	All             bool
	Reference       *model.EntityReference
}

// TokenSource fetches live device registrations.
type TokenSource interface {
	ActiveByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]model.DeviceToken, error)
	AllActive(ctx context.Context) ([]model.DeviceToken, error)
}

// EntityOwnerSource maps a foreign reference to its owning user.
type EntityOwnerSource interface {
	OwnerAuthID(ctx context.Context, kind string, id int64) (uuid.UUID, bool, error)
}

// Resolver converts an Addressing into a deduplicated list of device
// tokens.
type Resolver struct {
	tokens   TokenSource
	entities EntityOwnerSource
}

func NewResolver(tokens TokenSource, entities EntityOwnerSource) *Resolver {
	return &Resolver{tokens: tokens, entities: entities}
}

// Resolve fetches and deduplicates the target tokens. At most one token per
// user survives: the one with the most recent last_seen (created_at as
// fallback, insertion order breaks ties). A missing foreign-reference
// entity yields zero targets, not an error.
func (r *Resolver) Resolve(ctx context.Context, addr Addressing) ([]model.DeviceToken, error) {
	rows, err := r.fetch(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	return dedupeTokens(rows), nil
}

// OwnerFor resolves a foreign reference to the owning user's auth id.
func (r *Resolver) OwnerFor(ctx context.Context, ref model.EntityReference) (uuid.UUID, bool, error) {
	owner, found, err := r.entities.OwnerAuthID(ctx, ref.Kind, ref.ID)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	return owner, found, nil
}

func (r *Resolver) fetch(ctx context.Context, addr Addressing) ([]model.DeviceToken, error) {
	switch {
	case len(addr.ExplicitUserIDs) > 0:
		return r.tokens.ActiveByUserIDs(ctx, addr.ExplicitUserIDs)
	case addr.All:
		return r.tokens.AllActive(ctx)
	case addr.Reference != nil:
		owner, found, err := r.entities.OwnerAuthID(ctx, addr.Reference.Kind, addr.Reference.ID)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		return r.tokens.ActiveByUserIDs(ctx, []uuid.UUID{owner})
	default:
		return nil, nil
	}
}

// dedupeTokens keeps one row per user (maximal recency) and drops duplicate
// token strings across users, preserving discovery order.
func dedupeTokens(rows []model.DeviceToken) []model.DeviceToken {
	best := make(map[uuid.UUID]model.DeviceToken, len(rows))
	order := make([]uuid.UUID, 0, len(rows))

	for _, row := range rows {
		current, seen := best[row.UserID]
		if !seen {
			best[row.UserID] = row
			order = append(order, row.UserID)
			continue
		}
		// Strictly-after keeps insertion order on ties.
		if row.Recency().After(current.Recency()) {
			best[row.UserID] = row
		}
	}

	out := make([]model.DeviceToken, 0, len(order))
	seenToken := make(map[string]bool, len(order))
	for _, userID := range order {
		row := best[userID]
		if seenToken[row.Token] {
			continue
		}
		seenToken[row.Token] = true
		out = append(out, row)
	}
	return out
}
