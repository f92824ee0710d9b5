package notify

import (
	"context"
	"log/slog"

	"github.com/craftsite/fulfillment-api/internal/domains/orders/ports"
)

var _ ports.MailSender = (*LogMailSender)(nil)

// LogMailSender records delivery announcements to the structured log. Email
// rendering and transport belong to the external mail collaborator; this
// adapter stands in where none is configured.
type LogMailSender struct {
	logger *slog.Logger
}

// NewLogMailSender wires the fallback sender.
func NewLogMailSender(logger *slog.Logger) *LogMailSender {
	return &LogMailSender{logger: logger}
}

// SendDeliveryEmail logs the announcement instead of dispatching it.
func (s *LogMailSender) SendDeliveryEmail(_ context.Context, to, siteURL string) error {
	if s.logger != nil {
		s.logger.Info("delivery email (log sink)", slog.String("to", to), slog.String("site.url", siteURL))
	}
	return nil
}
