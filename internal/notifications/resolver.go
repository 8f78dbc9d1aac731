package notifications

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/AliAliAhmad/inspection-system-sub003/internal/registry"
	"github.com/AliAliAhmad/inspection-system-sub003/pkg/repository"
)

// RecipientResolver decides who receives an event.
type RecipientResolver interface {
	Resolve(ctx context.Context, e Event) ([]uuid.UUID, error)
}

// Roster lists the active members of a role.
type Roster interface {
	ListUsers(ctx context.Context, q repository.DB, role registry.Role) ([]registry.User, error)
}

type rosterResolver struct {
	db     *sql.DB
	roster Roster
}

// NewResolver creates a resolver that unions an event's direct recipients
// with the active members of its routed roles.
func NewResolver(db *sql.DB, roster Roster) RecipientResolver {
	return &rosterResolver{db: db, roster: roster}
}

func (r *rosterResolver) Resolve(ctx context.Context, e Event) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]struct{}, len(e.Users))
	recipients := make([]uuid.UUID, 0, len(e.Users))

	add := func(id uuid.UUID) {
		if id == uuid.Nil {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		recipients = append(recipients, id)
	}

	for _, id := range e.Users {
		add(id)
	}

	for _, role := range Roles(e.Type) {
		users, err := r.roster.ListUsers(ctx, r.db, role)
		if err != nil {
			return recipients, fmt.Errorf("resolve %s recipients: %w", role, err)
		}
		for _, u := range users {
			add(u.ID)
		}
	}

	return recipients, nil
}
