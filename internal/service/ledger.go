package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/enesxunal/markaworld-g-sub000/internal/clock"
	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
	"github.com/enesxunal/markaworld-g-sub000/internal/lock"
	"github.com/enesxunal/markaworld-g-sub000/internal/repository"
	customError "github.com/enesxunal/markaworld-g-sub000/pkg/errors"
)

// Notifier receives ledger events after the state change that caused them
// has committed.
type Notifier interface {
	Notify(ctx context.Context, event domain.Event)
}

// Deps is what every ledger component is built from.
type Deps struct {
	Store    repository.Store
	Locker   lock.Locker
	Notifier Notifier
	Clock    clock.Clock
	Log      *logrus.Logger
}

// ledger holds the shared plumbing. All writes to a customer's limit or debt
// go through withCustomer, which takes the customer lock before opening the
// transaction so that read-check-write sequences cannot interleave.
type ledger struct {
	store    repository.Store
	locker   lock.Locker
	notifier Notifier
	clock    clock.Clock
	log      *logrus.Logger
}

func newLedger(d Deps) ledger {
	return ledger{
		store:    d.Store,
		locker:   d.Locker,
		notifier: d.Notifier,
		clock:    d.Clock,
		log:      d.Log,
	}
}

func (l ledger) withCustomer(ctx context.Context, customerID uuid.UUID, fn func(tx repository.Store) error) error {
	release, err := l.locker.Lock(ctx, lock.CustomerKey(customerID.String()))
	if err != nil {
		return customError.WrapPersistenceError(err)
	}
	defer release()

	return persistence(l.store.WithinTx(ctx, fn))
}

// lockedCustomer loads the customer inside tx and rejects missing ones.
func lockedCustomer(ctx context.Context, tx repository.Store, id uuid.UUID) (*domain.Customer, error) {
	customer, err := tx.Customers().GetForUpdate(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapCustomerNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapPersistenceError(err)
	}
	return customer, nil
}

// credit lowers the customer's debt. A clamp means the ledger was already
// inconsistent, so it is reported but not treated as a failure.
func (l ledger) credit(ctx context.Context, tx repository.Store, customerID uuid.UUID, amount decimal.Decimal, reason string) error {
	clamped, err := tx.Customers().Credit(ctx, customerID, amount)
	if err != nil {
		return customError.WrapPersistenceError(err)
	}
	if clamped {
		l.log.WithFields(logrus.Fields{
			"customer_id": customerID,
			"amount":      amount.String(),
			"reason":      reason,
		}).Warn("credit exceeded current debt, debt clamped to zero")
	}
	return nil
}

func (l ledger) notify(ctx context.Context, event domain.Event) {
	if l.notifier == nil {
		return
	}
	l.notifier.Notify(ctx, event)
}

// persistence wraps storage failures, leaving business errors untouched.
func persistence(err error) error {
	if err == nil || customError.CodeOf(err) != "" {
		return err
	}
	return customError.WrapPersistenceError(err)
}
