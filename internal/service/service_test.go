package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enesxunal/markaworld-g-sub000/internal/clock"
	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
	"github.com/enesxunal/markaworld-g-sub000/internal/lock"
	"github.com/enesxunal/markaworld-g-sub000/internal/repository"
	"github.com/enesxunal/markaworld-g-sub000/internal/testutil"
	"github.com/enesxunal/markaworld-g-sub000/internal/token"
)

// recordingNotifier keeps every event it is handed.
type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.Event
}

func (n *recordingNotifier) Notify(_ context.Context, event domain.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) ofKind(kind domain.EventKind) []domain.Event {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []domain.Event
	for _, e := range n.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	store     repository.Store
	clock     *clock.Fixed
	notifier  *recordingNotifier
	locker    lock.Locker
	logs      *logtest.Hook
	customers *CustomerService
	plans     *PlanService
	payments  *PaymentService
	overdue   *OverdueScanner
	lateFees  *LateFeeAccrual
	reminders *ReminderScheduler
	rates     *RateService
	checks    *Checks
}

var testPolicy = domain.LimitAdjustmentPolicy{
	MaxLimit:     decimal.NewFromInt(10000),
	IncreaseRate: decimal.NewFromInt(10),
	DecreaseRate: decimal.NewFromInt(5),
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithStore(t, testutil.NewStore(t))
}

func newFixtureWithStore(t *testing.T, store repository.Store) *fixture {
	t.Helper()

	f := &fixture{
		store:    store,
		clock:    clock.NewFixed(time.Date(2026, 1, 30, 10, 0, 0, 0, time.UTC)),
		notifier: &recordingNotifier{},
		locker:   lock.NewKeyedMutex(),
	}

	log, hook := logtest.NewNullLogger()
	f.logs = hook

	deps := Deps{
		Store:    f.store,
		Locker:   f.locker,
		Notifier: f.notifier,
		Clock:    f.clock,
		Log:      log,
	}

	tokens := token.NewIssuer("test-secret", 48*time.Hour, f.clock)

	f.customers = NewCustomerService(deps)
	f.plans = NewPlanService(deps, domain.DefaultInterestSchedule, tokens, 30)
	f.payments = NewPaymentService(deps, testPolicy)
	f.overdue = NewOverdueScanner(deps, testPolicy)
	f.lateFees = NewLateFeeAccrual(deps)
	f.reminders = NewReminderScheduler(deps, 3)
	f.rates = NewRateService(deps)
	f.checks = NewChecks(f.overdue, f.lateFees, f.reminders, f.locker, f.clock, deps.Log)
	return f
}

func (f *fixture) customer(t *testing.T, limit, debt string) *domain.Customer {
	t.Helper()
	return testutil.CreateCustomer(t, f.store, limit, debt)
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *domain.Customer {
	t.Helper()
	return testutil.Reload(t, f.store, id)
}

func (f *fixture) directPlan(t *testing.T, customerID uuid.UUID, principal string, count int) *domain.CreatePlanResponse {
	t.Helper()

	resp, err := f.plans.CreatePlan(context.Background(), &domain.CreatePlanRequest{
		CustomerID:       customerID,
		Principal:        decimal.RequireFromString(principal),
		InstallmentCount: count,
		Mode:             domain.CreationModeDirect,
	})
	require.NoError(t, err)
	return resp
}

func (f *fixture) installment(t *testing.T, planID, id uuid.UUID) *domain.Installment {
	t.Helper()

	installment, err := f.store.Installments().GetByID(context.Background(), planID, id)
	require.NoError(t, err)
	return installment
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// assertNoWarnings fails if anything was logged at warn level or above.
func (f *fixture) assertNoWarnings(t *testing.T) {
	t.Helper()
	for _, entry := range f.logs.AllEntries() {
		assert.False(t, entry.Level <= logrus.WarnLevel, "unexpected %s log: %s", entry.Level, entry.Message)
	}
}
