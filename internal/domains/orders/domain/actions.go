package domain

// Action enumerates the portal operations gated by order state.
type Action string

const (
	ActionApprove           Action = "approve"
	ActionRequestRevision   Action = "request_revision"
	ActionViewPreview       Action = "view_preview"
	ActionViewDeliverables  Action = "view_deliverables"
	ActionOpenSupportTicket Action = "open_support_ticket"
)

// Actor identifies who initiates an action. The core never assumes an
// ambient identity; callers pass the actor explicitly on every request.
type Actor struct {
	ID       string
	Internal bool
}

// owns reports whether the actor is the order's own customer.
func (a Actor) owns(o *Order) bool {
	return a.ID != "" && a.ID == o.CustomerID
}

// PermittedActions returns the action set legal for the actor given the
// order's current state. Unknown statuses permit nothing. Internal actors
// bypass the approve/revision gating but remain subject to the transition
// engine's own guards.
func PermittedActions(o *Order, actor Actor) []Action {
	if o == nil || !o.Status.Known() {
		return nil
	}

	inReview := o.Status == StatusPreview || o.Status == StatusReview
	var actions []Action

	if actor.Internal {
		actions = append(actions, ActionApprove, ActionRequestRevision)
		if o.PreviewURL != "" {
			actions = append(actions, ActionViewPreview)
		}
		actions = append(actions, ActionViewDeliverables)
		return actions
	}

	if !actor.owns(o) {
		return nil
	}
	if inReview {
		actions = append(actions, ActionApprove, ActionRequestRevision)
	}
	if o.PreviewURL != "" {
		actions = append(actions, ActionViewPreview)
	}
	if o.Status != StatusCancelled {
		// Deliverables and support stay reachable through delivery; only a
		// cancelled order closes the portal.
		actions = append(actions, ActionViewDeliverables, ActionOpenSupportTicket)
	}
	return actions
}

// ActionPermitted reports whether a single action is in the permitted set.
func ActionPermitted(o *Order, actor Actor, action Action) bool {
	for _, permitted := range PermittedActions(o, actor) {
		if permitted == action {
			return true
		}
	}
	return false
}
