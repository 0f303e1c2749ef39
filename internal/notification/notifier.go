package notification

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
)

// Notifier is fire-and-log: delivery failures are logged and never reach
// the caller, so they cannot roll back ledger state.
type Notifier struct {
	sender Sender
	log    *logrus.Logger
}

func NewNotifier(sender Sender, log *logrus.Logger) *Notifier {
	return &Notifier{sender: sender, log: log}
}

func (n *Notifier) Notify(ctx context.Context, event domain.Event) {
	if err := n.sender.Send(ctx, event); err != nil {
		n.log.WithFields(logrus.Fields{
			"kind":           event.Kind,
			"customer_id":    event.CustomerID,
			"plan_id":        event.PlanID,
			"installment_id": event.InstallmentID,
		}).WithError(err).Warn("notification delivery failed")
	}
}
