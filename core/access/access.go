// Package access decides what an actor may do to an owned entity and how far
// an actor can see into a collection. Handlers resolve the Actor once from the
// JWT claims and pass it down; nothing here reads ambient request state.
package access

import (
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("permission denied")
)

// Role is the capability carried on a user account. It replaces a group-name
// lookup: membership is resolved at authentication time and travels with the
// Actor value.
type Role string

const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
)

var AllRoles = []Role{RoleMember, RoleModerator}

func ValidRole(r Role) bool {
	return r == RoleMember || r == RoleModerator
}

type Action int

const (
	ActionCreate Action = iota
	ActionRead
	ActionUpdate
	ActionDelete
)

// Actor is the authenticated caller, or the zero value for anonymous requests.
type Actor struct {
	ID            string
	Role          Role
	Staff         bool // is_staff or is_superuser: unrestricted
	Authenticated bool
}

func Anonymous() Actor { return Actor{} }

func (a Actor) IsModerator() bool {
	return a.Authenticated && a.Role == RoleModerator
}

// Can evaluates an object-level permission against the target's owner
// reference. owner is null when the owning account has been removed; such
// entities stay readable by anyone authenticated but writable only by
// moderators and staff.
func (a Actor) Can(action Action, owner null.String) bool {
	if !a.Authenticated {
		return false
	}
	if a.Staff {
		return true
	}

	switch action {
	case ActionCreate:
		// moderators curate, they do not author
		return a.Role != RoleModerator
	case ActionRead:
		return true
	case ActionUpdate:
		if a.IsModerator() {
			return true
		}
		return owner.Valid && owner.String == a.ID
	case ActionDelete:
		if a.IsModerator() {
			return false
		}
		return owner.Valid && owner.String == a.ID
	}
	return false
}

// Scope is the visibility predicate repositories apply to collection queries
// and to single lookups, so that an id outside the actor's scope resolves to
// not-found rather than forbidden.
type Scope int

const (
	// ScopeNone matches nothing.
	ScopeNone Scope = iota
	// ScopeOwned matches rows owned by the actor.
	ScopeOwned
	// ScopeAll matches every row.
	ScopeAll
)

// CatalogScope narrows courses and lessons. Authenticated actors browse the
// whole catalog; writes are gated per-object by Can.
func CatalogScope(a Actor) Scope {
	if !a.Authenticated {
		return ScopeNone
	}
	return ScopeAll
}

// OwnedScope narrows strictly personal collections (payments, profiles).
// Moderators and staff audit everything; everyone else sees their own rows.
func OwnedScope(a Actor) Scope {
	if !a.Authenticated {
		return ScopeNone
	}
	if a.Staff || a.IsModerator() {
		return ScopeAll
	}
	return ScopeOwned
}
