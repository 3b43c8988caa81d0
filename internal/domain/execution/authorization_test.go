package execution

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaitori/dispatch-go/internal/domain/shared"
	"github.com/kaitori/dispatch-go/internal/domain/staff"
)

func TestCanUpdateRoute(t *testing.T) {
	tests := []struct {
		name         string
		role         staff.Role
		actorID      int
		routeStaffID int
		want         bool
	}{
		{name: "buyer updates own route", role: staff.RoleBuyer, actorID: 1, routeStaffID: 1, want: true},
		{name: "buyer cannot touch another buyer's route", role: staff.RoleBuyer, actorID: 1, routeStaffID: 2, want: false},
		{name: "supervisor updates any route", role: staff.RoleSupervisor, actorID: 1, routeStaffID: 2, want: true},
		{name: "admin updates any route", role: staff.RoleAdmin, actorID: 1, routeStaffID: 2, want: true},
		{name: "unknown role is denied", role: staff.Role("intern"), actorID: 1, routeStaffID: 1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := &staff.Staff{StaffID: tt.actorID, Role: tt.role}
			assert.Equal(t, tt.want, CanUpdateRoute(actor, tt.routeStaffID))
		})
	}
}

func TestAuthorizeRouteUpdate(t *testing.T) {
	buyer := &staff.Staff{StaffID: 3, Role: staff.RoleBuyer}

	assert.NoError(t, AuthorizeRouteUpdate(buyer, 10, 3))

	err := AuthorizeRouteUpdate(buyer, 10, 4)
	require.Error(t, err)
	var forbidden *shared.ForbiddenError
	require.True(t, errors.As(err, &forbidden))
	assert.Equal(t, 3, forbidden.StaffID)
}

func TestNewPurchaseFailure(t *testing.T) {
	now := time.Date(2025, 7, 7, 2, 0, 0, 0, time.UTC)

	t.Run("valid failure", func(t *testing.T) {
		failure, err := NewPurchaseFailure(5, 3, FailureOutOfStock, now)
		require.NoError(t, err)
		assert.Equal(t, FailureOutOfStock, failure.FailureType)
		assert.Equal(t, now, failure.RecordedAt)
	})

	t.Run("unknown failure type", func(t *testing.T) {
		_, err := NewPurchaseFailure(5, 3, FailureType("vanished"), now)
		assert.Error(t, err)
	})

	t.Run("list item required", func(t *testing.T) {
		_, err := NewPurchaseFailure(0, 3, FailureOther, now)
		assert.Error(t, err)
	})
}
