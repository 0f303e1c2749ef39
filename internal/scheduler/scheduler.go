// Package scheduler fires the scheduled ledger checks on a cron spec.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/enesxunal/markaworld-g-sub000/internal/config"
	"github.com/enesxunal/markaworld-g-sub000/internal/service"
	customError "github.com/enesxunal/markaworld-g-sub000/pkg/errors"
)

type Runner interface {
	RunAll(ctx context.Context) (*service.CheckReport, error)
}

// Scheduler owns a cron instance with a single job. Tick can be called
// directly to run the job deterministically.
type Scheduler struct {
	cron    *cron.Cron
	entry   cron.EntryID
	runner  Runner
	log     *logrus.Logger
	timeout time.Duration
}

// New parses spec in loc. timeout bounds a single run, zero means none.
func New(spec string, loc *time.Location, timeout time.Duration, runner Runner, log *logrus.Logger) (*Scheduler, error) {
	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithParser(config.CronParser()),
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	s := &Scheduler{cron: c, runner: runner, log: log, timeout: timeout}

	entry, err := c.AddFunc(spec, s.Tick)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.entry = entry
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.WithField("next_run", s.Next()).Info("scheduler started")
}

// Stop stops firing and waits for a running job to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stopped before the running checks finished")
	}
}

// Next is the next time the checks fire. Zero until Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Tick runs the checks once.
func (s *Scheduler) Tick() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	report, err := s.runner.RunAll(ctx)
	if errors.Is(err, customError.ErrChecksInProgress) {
		s.log.Info("scheduled checks skipped, another run holds the lock")
		return
	}
	if err != nil {
		s.log.WithError(err).Error("scheduled checks failed")
		return
	}

	fields := logrus.Fields{
		"duration": report.FinishedAt.Sub(report.StartedAt).String(),
		"errors":   len(report.Errors),
	}
	if report.Overdue != nil {
		fields["overdue"] = report.Overdue.Transitioned
	}
	if report.LateFees != nil {
		fields["late_fees"] = report.LateFees.Accrued
	}
	if report.Reminders != nil {
		fields["reminders"] = report.Reminders.Sent
	}
	s.log.WithFields(fields).Info("scheduled checks finished")
}

// cronLogger routes cron's own logging to logrus.
type cronLogger struct {
	log *logrus.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(toFields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithFields(toFields(keysAndValues)).WithError(err).Error("cron: " + msg)
}

func toFields(keysAndValues []interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return fields
}
