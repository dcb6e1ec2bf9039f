// Package permission is the authorization guard consulted by every mutating
// operation before it touches the store.
package permission

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/marketplace-api/internal/model"
	apperrors "github.com/jwalitptl/marketplace-api/pkg/errors"
)

type Action string

const (
	ActionRead         Action = "read"
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionUpdateStatus Action = "update_status"
	ActionReview       Action = "review"
	ActionMessage      Action = "message"
	ActionFlag         Action = "flag"
	ActionModerate     Action = "moderate"
)

type Kind string

const (
	KindService Kind = "service"
	KindBooking Kind = "booking"
	KindReview  Kind = "review"
	KindUser    Kind = "user"
	KindCatalog Kind = "catalog"
)

// Resource is what an action targets. Zero ids mean "no such party".
type Resource struct {
	Kind       Kind
	ID         uuid.UUID
	OwnerID    uuid.UUID
	CustomerID uuid.UUID
	ProviderID uuid.UUID
}

func ForService(s *model.Service) Resource {
	return Resource{Kind: KindService, ID: s.ID, OwnerID: s.ProviderID, ProviderID: s.ProviderID}
}

func ForBooking(b *model.Booking) Resource {
	return Resource{Kind: KindBooking, ID: b.ID, CustomerID: b.CustomerID, ProviderID: b.ProviderID}
}

func ForChat(c *model.Chat) Resource {
	return Resource{Kind: KindBooking, ID: c.BookingID, CustomerID: c.CustomerID, ProviderID: c.ProviderID}
}

func ForReview(r *model.Review) Resource {
	return Resource{Kind: KindReview, ID: r.ID, OwnerID: r.CustomerID, CustomerID: r.CustomerID, ProviderID: r.ProviderID}
}

func ForUser(u *model.User) Resource {
	return Resource{Kind: KindUser, ID: u.ID, OwnerID: u.ID}
}

// Catalog is the collection new services are published into
func Catalog() Resource {
	return Resource{Kind: KindCatalog}
}

// IsOwnerOrAdmin reports whether actor is an admin or owns the resource
func IsOwnerOrAdmin(actor model.Principal, ownerID uuid.UUID) bool {
	return actor.IsAdmin() || (ownerID != uuid.Nil && actor.ID == ownerID)
}

func isParty(actor model.Principal, r Resource) bool {
	return actor.ID != uuid.Nil && (actor.ID == r.CustomerID || actor.ID == r.ProviderID)
}

type rule func(actor model.Principal, r Resource) bool

var (
	adminOnly    = func(actor model.Principal, _ Resource) bool { return actor.IsAdmin() }
	ownerOrAdmin = func(actor model.Principal, r Resource) bool { return IsOwnerOrAdmin(actor, r.OwnerID) }
	partyOrAdmin = func(actor model.Principal, r Resource) bool { return actor.IsAdmin() || isParty(actor, r) }
)

var rules = map[Kind]map[Action]rule{
	KindCatalog: {
		ActionCreate: func(actor model.Principal, _ Resource) bool {
			return actor.Role == model.RoleProvider || actor.IsAdmin()
		},
	},
	KindService: {
		ActionUpdate: ownerOrAdmin,
		ActionDelete: ownerOrAdmin,
	},
	KindBooking: {
		ActionRead:         partyOrAdmin,
		ActionUpdateStatus: partyOrAdmin,
		ActionReview: func(actor model.Principal, r Resource) bool {
			return actor.Role == model.RoleCustomer && actor.ID == r.CustomerID
		},
		// admins may read a thread but not post into it
		ActionMessage: func(actor model.Principal, r Resource) bool { return isParty(actor, r) },
	},
	KindReview: {
		ActionFlag: func(actor model.Principal, r Resource) bool {
			return actor.IsAdmin() || (actor.Role == model.RoleProvider && actor.ID == r.ProviderID)
		},
		ActionModerate: adminOnly,
	},
	KindUser: {
		ActionModerate: adminOnly,
		ActionRead:     ownerOrAdmin,
	},
}

// Authorize fails with an authorization error unless actor may perform
// action on r. Unknown kind/action pairs are denied.
func Authorize(actor model.Principal, r Resource, action Action) error {
	if byAction, ok := rules[r.Kind]; ok {
		if allow, ok := byAction[action]; ok && allow(actor, r) {
			return nil
		}
	}
	return apperrors.Forbidden(fmt.Sprintf("not allowed to %s this %s", action, r.Kind))
}

// RequireRole fails unless actor holds one of roles
func RequireRole(actor model.Principal, roles ...model.Role) error {
	for _, role := range roles {
		if actor.Role == role {
			return nil
		}
	}
	return apperrors.Forbidden("insufficient role")
}
