package service

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/enesxunal/markaworld-g-sub000/internal/clock"
	"github.com/enesxunal/markaworld-g-sub000/internal/lock"
	customError "github.com/enesxunal/markaworld-g-sub000/pkg/errors"
)

// ChecksLockKey guards the check sequence against overlapping runs.
const ChecksLockKey = "scheduler:checks"

// CheckReport is the outcome of one pass over the scheduled checks. A task
// that failed as a whole has its error recorded and the next task still runs.
type CheckReport struct {
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt time.Time       `json:"finished_at"`
	Overdue    *ScanResult     `json:"overdue,omitempty"`
	LateFees   *AccrualResult  `json:"late_fees,omitempty"`
	Reminders  *ReminderResult `json:"reminders,omitempty"`
	Errors     []string        `json:"errors,omitempty"`
}

// Checks runs OverdueScanner, LateFeeAccrual and ReminderScheduler in order.
// Accrual runs after the scan so that installments turning overdue today are
// charged in the same pass.
type Checks struct {
	overdue   *OverdueScanner
	lateFees  *LateFeeAccrual
	reminders *ReminderScheduler
	locker    lock.Locker
	clock     clock.Clock
	log       *logrus.Logger
}

func NewChecks(overdue *OverdueScanner, lateFees *LateFeeAccrual, reminders *ReminderScheduler, locker lock.Locker, c clock.Clock, log *logrus.Logger) *Checks {
	return &Checks{
		overdue:   overdue,
		lateFees:  lateFees,
		reminders: reminders,
		locker:    locker,
		clock:     c,
		log:       log,
	}
}

// RunAll runs every check once. It fails with ErrChecksInProgress when
// another run holds the checks lock.
func (c *Checks) RunAll(ctx context.Context) (*CheckReport, error) {
	release, err := c.locker.TryLock(ctx, ChecksLockKey)
	if errors.Is(err, lock.ErrNotAcquired) {
		c.log.Warn("scheduled checks already running, skipping")
		return nil, customError.WrapChecksInProgress()
	}
	if err != nil {
		return nil, customError.WrapPersistenceError(err)
	}
	defer release()

	report := &CheckReport{StartedAt: c.clock.Now().UTC()}

	if report.Overdue, err = c.overdue.Run(ctx); err != nil {
		report.fail("overdue scan", err, c.log)
	}
	if report.LateFees, err = c.lateFees.Run(ctx); err != nil {
		report.fail("late fee accrual", err, c.log)
	}
	if report.Reminders, err = c.reminders.Run(ctx); err != nil {
		report.fail("payment reminders", err, c.log)
	}

	report.FinishedAt = c.clock.Now().UTC()
	return report, nil
}

func (r *CheckReport) fail(task string, err error, log *logrus.Logger) {
	r.Errors = append(r.Errors, task+": "+err.Error())

	entry := log.WithField("task", task).WithError(err)
	if errors.Is(err, customError.ErrNoActiveRate) {
		entry.Warn("scheduled check skipped")
		return
	}
	entry.Error("scheduled check failed")
}
