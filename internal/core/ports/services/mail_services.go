package services

import "context"

// MailSenderSvcFacade is the notification gateway. The auth flows treat it as
// a fire-and-forget side effect; delivery failures are logged, not surfaced.
type MailSenderSvcFacade interface {
	// SendPasswordResetEmail sends the reset link embedding the given token.
	SendPasswordResetEmail(ctx context.Context, to string, resetToken string) error
}
