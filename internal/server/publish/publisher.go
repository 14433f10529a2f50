// Package publish sends the pipeline's asynchronous side effects: card
// issuance requests and lifecycle notifications. Delivery is at-least-once,
// unordered, fire-and-forget; the pipeline decides how failures surface.
package publish

import (
	"context"

	"github.com/avicente/cardholder/internal/server/models"
)

// Card request kinds issued for every new account.
const (
	CardKindDebit  = "DEBIT"
	CardKindCredit = "CREDIT"
)

// Publisher exposes the two logical channels. PublishCardRequest failures are
// surfaced to callers as warnings; PublishNotification failures are logged
// only. Neither ever fails an operation.
type Publisher interface {
	PublishCardRequest(ctx context.Context, identity, kind string) error
	PublishNotification(ctx context.Context, event *models.NotificationEvent) error
}
