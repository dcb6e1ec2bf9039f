package permission

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/marketplace-api/internal/model"
	apperrors "github.com/jwalitptl/marketplace-api/pkg/errors"
)

func principal(role model.Role) model.Principal {
	return model.Principal{ID: uuid.New(), Role: role}
}

func TestIsOwnerOrAdmin(t *testing.T) {
	owner := principal(model.RoleProvider)

	assert.True(t, IsOwnerOrAdmin(owner, owner.ID))
	assert.True(t, IsOwnerOrAdmin(principal(model.RoleAdmin), owner.ID))
	assert.False(t, IsOwnerOrAdmin(principal(model.RoleProvider), owner.ID))
	assert.False(t, IsOwnerOrAdmin(model.Principal{Role: model.RoleCustomer}, uuid.Nil))
}

func TestAuthorizeService(t *testing.T) {
	owner := principal(model.RoleProvider)
	svc := &model.Service{Base: model.Base{ID: uuid.New()}, ProviderID: owner.ID}

	assert.NoError(t, Authorize(owner, ForService(svc), ActionUpdate))
	assert.NoError(t, Authorize(principal(model.RoleAdmin), ForService(svc), ActionDelete))

	err := Authorize(principal(model.RoleProvider), ForService(svc), ActionUpdate)
	assert.True(t, apperrors.IsAuthorization(err))

	assert.NoError(t, Authorize(owner, Catalog(), ActionCreate))
	assert.True(t, apperrors.IsAuthorization(Authorize(principal(model.RoleCustomer), Catalog(), ActionCreate)))
}

func TestAuthorizeBooking(t *testing.T) {
	customer := principal(model.RoleCustomer)
	provider := principal(model.RoleProvider)
	admin := principal(model.RoleAdmin)
	b := &model.Booking{Base: model.Base{ID: uuid.New()}, CustomerID: customer.ID, ProviderID: provider.ID}

	tests := []struct {
		name   string
		actor  model.Principal
		action Action
		allow  bool
	}{
		{"customer reads", customer, ActionRead, true},
		{"provider updates status", provider, ActionUpdateStatus, true},
		{"admin updates status", admin, ActionUpdateStatus, true},
		{"stranger updates status", principal(model.RoleCustomer), ActionUpdateStatus, false},
		{"customer reviews", customer, ActionReview, true},
		{"provider cannot review", provider, ActionReview, false},
		{"other customer cannot review", principal(model.RoleCustomer), ActionReview, false},
		{"party messages", provider, ActionMessage, true},
		{"admin cannot message", admin, ActionMessage, false},
		{"unknown action denied", admin, ActionFlag, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.actor, ForBooking(b), tt.action)
			if tt.allow {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperrors.IsAuthorization(err))
			}
		})
	}
}

func TestAuthorizeReview(t *testing.T) {
	provider := principal(model.RoleProvider)
	r := &model.Review{Base: model.Base{ID: uuid.New()}, ProviderID: provider.ID, CustomerID: uuid.New()}

	assert.NoError(t, Authorize(provider, ForReview(r), ActionFlag))
	assert.NoError(t, Authorize(principal(model.RoleAdmin), ForReview(r), ActionFlag))
	assert.Error(t, Authorize(principal(model.RoleProvider), ForReview(r), ActionFlag))
	assert.Error(t, Authorize(provider, ForReview(r), ActionModerate))
	assert.NoError(t, Authorize(principal(model.RoleAdmin), ForReview(r), ActionModerate))
}

func TestRequireRole(t *testing.T) {
	assert.NoError(t, RequireRole(principal(model.RoleCustomer), model.RoleCustomer))
	assert.True(t, apperrors.IsAuthorization(RequireRole(principal(model.RoleProvider), model.RoleCustomer)))
}
