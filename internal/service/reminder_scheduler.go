package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/enesxunal/markaworld-g-sub000/internal/clock"
	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
	customError "github.com/enesxunal/markaworld-g-sub000/pkg/errors"
)

// ReminderResult counts the reminders one run sent.
type ReminderResult struct {
	DueDate string `json:"due_date"`
	Sent    int    `json:"sent"`
}

// ReminderScheduler notifies customers whose installments fall due a fixed
// number of days from today. It never mutates ledger state.
type ReminderScheduler struct {
	ledger
	days int
}

func NewReminderScheduler(d Deps, days int) *ReminderScheduler {
	return &ReminderScheduler{ledger: newLedger(d), days: days}
}

func (r *ReminderScheduler) Run(ctx context.Context) (*ReminderResult, error) {
	target := clock.Today(r.clock).AddDate(0, 0, r.days)

	due, err := r.store.Installments().ListDueOn(ctx, target)
	if err != nil {
		return nil, customError.WrapPersistenceError(err)
	}

	result := &ReminderResult{DueDate: target.Format("2006-01-02")}
	for _, installment := range due {
		r.notify(ctx, domain.Event{
			Kind:              domain.EventReminder,
			CustomerID:        installment.CustomerID,
			CustomerName:      installment.CustomerName,
			CustomerEmail:     installment.CustomerEmail,
			PlanID:            installment.PlanID,
			InstallmentID:     installment.ID,
			InstallmentNumber: installment.InstallmentNumber,
			Amount:            installment.Amount,
			DueDate:           installment.DueDate,
		})
		result.Sent++
	}

	r.log.WithFields(logrus.Fields{
		"due_date": result.DueDate,
		"sent":     result.Sent,
	}).Info("payment reminders sent")

	return result, nil
}
