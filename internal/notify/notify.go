// Package notify delivers account tokens to their owners. Delivery is out of
// scope for this service, so the only implementation writes them to the log.
package notify

import (
	"context"
	"log/slog"

	"storefront/internal/domain/admin"
	"storefront/internal/domain/customer"
)

type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log.With("component", "notify")}
}

func (n *LogNotifier) SendAdminConfirmation(ctx context.Context, a *admin.Admin, token string) error {
	n.log.InfoContext(ctx, "admin email confirmation issued", "admin_id", a.ID, "email", a.Email)
	n.log.DebugContext(ctx, "admin confirmation token", "admin_id", a.ID, "token", token)
	return nil
}

func (n *LogNotifier) SendEmailConfirmation(ctx context.Context, c *customer.Cliente, token string) error {
	n.log.InfoContext(ctx, "cliente email confirmation issued", "cliente_id", c.ID, "email", c.Email)
	n.log.DebugContext(ctx, "cliente confirmation token", "cliente_id", c.ID, "token", token)
	return nil
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, c *customer.Cliente, code string) error {
	n.log.InfoContext(ctx, "password reset code issued", "cliente_id", c.ID, "email", c.Email)
	n.log.DebugContext(ctx, "password reset code", "cliente_id", c.ID, "codigo", code)
	return nil
}
