package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPermittedActions_OwnerInPreview(t *testing.T) {
	order := orderInStatus(t, StatusPreview)
	actor := Actor{ID: order.CustomerID}

	actions := PermittedActions(order, actor)
	require.ElementsMatch(t, []Action{
		ActionApprove,
		ActionRequestRevision,
		ActionViewPreview,
		ActionViewDeliverables,
		ActionOpenSupportTicket,
	}, actions)
}

func TestPermittedActions_OwnerOutsideReview(t *testing.T) {
	order := orderInStatus(t, StatusBuilding)
	actor := Actor{ID: order.CustomerID}

	actions := PermittedActions(order, actor)
	require.NotContains(t, actions, ActionApprove)
	require.NotContains(t, actions, ActionRequestRevision)
	require.Contains(t, actions, ActionViewDeliverables)
	require.Contains(t, actions, ActionOpenSupportTicket)
}

func TestPermittedActions_NonOwnerGetsNothing(t *testing.T) {
	order := orderInStatus(t, StatusPreview)
	require.Empty(t, PermittedActions(order, Actor{ID: "someone-else"}))
	require.Empty(t, PermittedActions(order, Actor{}))
}

func TestPermittedActions_DeliveredKeepsPortalOpen(t *testing.T) {
	order := orderInStatus(t, StatusDelivered)
	actor := Actor{ID: order.CustomerID}

	actions := PermittedActions(order, actor)
	require.NotContains(t, actions, ActionApprove)
	require.NotContains(t, actions, ActionRequestRevision)
	require.Contains(t, actions, ActionViewPreview)
	require.Contains(t, actions, ActionViewDeliverables)
	require.Contains(t, actions, ActionOpenSupportTicket)
}

func TestPermittedActions_CancelledClosesPortal(t *testing.T) {
	order := orderInStatus(t, StatusCancelled)
	actor := Actor{ID: order.CustomerID}

	actions := PermittedActions(order, actor)
	require.NotContains(t, actions, ActionViewDeliverables)
	require.NotContains(t, actions, ActionOpenSupportTicket)
}

func TestPermittedActions_InternalActor(t *testing.T) {
	order := orderInStatus(t, StatusReview)
	actor := Actor{ID: "ops-1", Internal: true}

	actions := PermittedActions(order, actor)
	require.Contains(t, actions, ActionApprove)
	require.Contains(t, actions, ActionRequestRevision)
	require.Contains(t, actions, ActionViewPreview)
	require.Contains(t, actions, ActionViewDeliverables)
}

func TestPermittedActions_UnknownStatusPermitsNothing(t *testing.T) {
	order := newTestOrder(t)
	order.Status = StatusUnknown
	require.Empty(t, PermittedActions(order, Actor{ID: order.CustomerID}))
	require.Empty(t, PermittedActions(order, Actor{ID: "ops-1", Internal: true}))
	require.Empty(t, PermittedActions(nil, Actor{ID: "ops-1", Internal: true}))
}

func TestActionPermitted(t *testing.T) {
	order := orderInStatus(t, StatusPreview)
	owner := Actor{ID: order.CustomerID}

	require.True(t, ActionPermitted(order, owner, ActionApprove))
	require.False(t, ActionPermitted(order, Actor{ID: "stranger"}, ActionApprove))

	order.Status = StatusDelivered
	require.False(t, ActionPermitted(order, owner, ActionApprove))
}
