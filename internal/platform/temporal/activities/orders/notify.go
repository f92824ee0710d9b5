package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"

	ordertypes "github.com/craftsite/fulfillment-api/internal/domains/orders/application/types"
	orderports "github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
)

const (
	// SendDeliveryEmailActivityName announces the published site to the customer.
	SendDeliveryEmailActivityName = "orders.activities.SendDeliveryEmail"
	// SyncCRMActivityName pushes the delivered order to the CRM.
	SyncCRMActivityName = "orders.activities.SyncCRM"
)

// Activities groups the delivery fan-out collaborators.
type Activities struct {
	mail orderports.MailSender
	crm  orderports.CRMSync
}

// NewActivities wires the collaborators into the Temporal activities bundle.
func NewActivities(mail orderports.MailSender, crm orderports.CRMSync) *Activities {
	return &Activities{mail: mail, crm: crm}
}

// SendDeliveryEmail hands the delivery announcement to the mail collaborator.
func (a *Activities) SendDeliveryEmail(ctx context.Context, view ordertypes.OrderView) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.mail == nil {
		logger.Info("mail collaborator not configured; skipping", "orderId", view.ID)
		return nil
	}
	logger.Info("SendDeliveryEmail activity started", "orderId", view.ID)
	if err := a.mail.SendDeliveryEmail(ctx, view.CustomerEmail, view.SiteURL); err != nil {
		logger.Error("SendDeliveryEmail activity failed", "orderId", view.ID, "error", err)
		return err
	}
	logger.Info("SendDeliveryEmail activity completed", "orderId", view.ID)
	return nil
}

// SyncCRM loads the heartbeat state and pushes the delivery to the CRM once.
func (a *Activities) SyncCRM(ctx context.Context, view ordertypes.OrderView) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.crm == nil {
		logger.Info("CRM collaborator not configured; skipping", "orderId", view.ID)
		return nil
	}

	var hb syncHeartbeat
	if activity.HasHeartbeatDetails(ctx) {
		_ = activity.GetHeartbeatDetails(ctx, &hb)
	}
	if hb.Completed {
		logger.Info("SyncCRM already completed in prior attempt; skipping", "orderId", view.ID)
		return nil
	}

	logger.Info("SyncCRM activity started", "orderId", view.ID)
	if view.SiteURL == "" {
		logger.Error("SyncCRM missing site url", "orderId", view.ID)
		return errors.New("delivered order has no site url")
	}
	if err := a.crm.SyncDelivered(ctx, view.ID, view.CustomerEmail, view.SiteURL); err != nil {
		logger.Error("SyncCRM activity failed", "orderId", view.ID, "error", err)
		return err
	}
	activity.RecordHeartbeat(ctx, syncHeartbeat{Completed: true})
	logger.Info("SyncCRM activity completed", "orderId", view.ID)
	return nil
}

type syncHeartbeat struct {
	Completed bool
}
