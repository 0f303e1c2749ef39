package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
	"github.com/enesxunal/markaworld-g-sub000/internal/testutil"
	customError "github.com/enesxunal/markaworld-g-sub000/pkg/errors"
)

func TestPayInstallment_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.customer(t, "5000", "0")
	plan := f.directPlan(t, customer.ID, "1000", 3)

	result, err := f.payments.PayInstallment(ctx, plan.Plan.ID, plan.Installments[0].ID, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, domain.InstallmentStatusPaid, result.Installment.Status)
	require.NotNil(t, result.Installment.PaidDate)
	assert.Equal(t, testutil.Date(2026, 1, 30), *result.Installment.PaidDate)
	assert.True(t, result.UnpaidTotal.Equal(dec("700")))
	assert.True(t, result.CurrentDebt.Equal(dec("700")))
	assert.True(t, result.CreditLimit.Equal(dec("5500")))

	reloaded := f.reload(t, customer.ID)
	assert.True(t, reloaded.CurrentDebt.Equal(dec("700")))
	assert.True(t, reloaded.CreditLimit.Equal(dec("5500")))

	stored := f.installment(t, plan.Plan.ID, plan.Installments[0].ID)
	assert.Equal(t, domain.InstallmentStatusPaid, stored.Status)

	events := f.notifier.ofKind(domain.EventPaymentReceived)
	require.Len(t, events, 1)
	assert.Equal(t, 1, events[0].InstallmentNumber)
	assert.True(t, events[0].UnpaidTotal.Equal(dec("700")))
}

func TestPayInstallment_ExplicitPaymentDate(t *testing.T) {
	f := newFixture(t)
	customer := f.customer(t, "5000", "0")
	plan := f.directPlan(t, customer.ID, "1000", 2)

	paidAt := time.Date(2026, 2, 14, 16, 45, 0, 0, time.UTC)
	result, err := f.payments.PayInstallment(context.Background(), plan.Plan.ID, plan.Installments[1].ID, paidAt)
	require.NoError(t, err)

	assert.Equal(t, testutil.Date(2026, 2, 14), *result.Installment.PaidDate)
}

func TestPayInstallment_Twice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.customer(t, "5000", "0")
	plan := f.directPlan(t, customer.ID, "1000", 3)
	installmentID := plan.Installments[0].ID

	_, err := f.payments.PayInstallment(ctx, plan.Plan.ID, installmentID, time.Time{})
	require.NoError(t, err)

	_, err = f.payments.PayInstallment(ctx, plan.Plan.ID, installmentID, time.Time{})
	assert.ErrorIs(t, err, customError.ErrAlreadyPaid)

	reloaded := f.reload(t, customer.ID)
	assert.True(t, reloaded.CurrentDebt.Equal(dec("700")), "debt changes exactly once")
	assert.True(t, reloaded.CreditLimit.Equal(dec("5500")), "limit raised exactly once")
	assert.Len(t, f.notifier.ofKind(domain.EventPaymentReceived), 1)
}

func TestPayInstallment_ConcurrentDuplicates(t *testing.T) {
	f := newFixture(t)
	customer := f.customer(t, "5000", "0")
	plan := f.directPlan(t, customer.ID, "1000", 3)
	installmentID := plan.Installments[0].ID

	const attempts = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		paid    int
		dupes   int
		unknown []error
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := f.payments.PayInstallment(context.Background(), plan.Plan.ID, installmentID, time.Time{})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				paid++
			case errors.Is(err, customError.ErrAlreadyPaid):
				dupes++
			default:
				unknown = append(unknown, err)
			}
		}()
	}
	wg.Wait()

	assert.Empty(t, unknown)
	assert.Equal(t, 1, paid)
	assert.Equal(t, attempts-1, dupes)
	assert.True(t, f.reload(t, customer.ID).CurrentDebt.Equal(dec("700")))
}

func TestPayInstallment_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.customer(t, "5000", "0")
	plan := f.directPlan(t, customer.ID, "1000", 3)
	other := f.directPlan(t, customer.ID, "500", 1)

	_, err := f.payments.PayInstallment(ctx, plan.Plan.ID, uuid.New(), time.Time{})
	assert.ErrorIs(t, err, customError.ErrInstallmentNotFound)

	_, err = f.payments.PayInstallment(ctx, plan.Plan.ID, other.Installments[0].ID, time.Time{})
	assert.ErrorIs(t, err, customError.ErrInstallmentNotFound, "installment of another plan")

	_, err = f.payments.PayInstallment(ctx, uuid.New(), plan.Installments[0].ID, time.Time{})
	assert.ErrorIs(t, err, customError.ErrPlanNotFound)

	assert.True(t, f.reload(t, customer.ID).CurrentDebt.Equal(dec("1550")))
}

func TestPayInstallment_LimitCappedAtMax(t *testing.T) {
	f := newFixture(t)
	customer := f.customer(t, "9500", "0")
	plan := f.directPlan(t, customer.ID, "1000", 1)

	result, err := f.payments.PayInstallment(context.Background(), plan.Plan.ID, plan.Installments[0].ID, time.Time{})
	require.NoError(t, err)

	assert.True(t, result.CreditLimit.Equal(dec("10000")), "got %s", result.CreditLimit)
}

func TestPayInstallment_LatePaymentStillRaisesLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.customer(t, "5000", "0")
	plan := f.directPlan(t, customer.ID, "1000", 3)

	f.clock.Set(time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC))
	_, err := f.overdue.Run(ctx)
	require.NoError(t, err)
	require.True(t, f.reload(t, customer.ID).CreditLimit.Equal(dec("4750")))

	result, err := f.payments.PayInstallment(ctx, plan.Plan.ID, plan.Installments[0].ID, time.Time{})
	require.NoError(t, err)

	assert.True(t, result.CreditLimit.Equal(dec("5225")), "got %s", result.CreditLimit)
	assert.Equal(t, domain.InstallmentStatusPaid, result.Installment.Status)
}

func TestPayInstallment_ClampsDebtAtZero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.customer(t, "5000", "0")
	plan := f.directPlan(t, customer.ID, "1000", 3)

	// Simulate inconsistent source data: debt lower than the installment.
	_, err := f.store.Customers().Credit(ctx, customer.ID, dec("1000"))
	require.NoError(t, err)

	result, err := f.payments.PayInstallment(ctx, plan.Plan.ID, plan.Installments[0].ID, time.Time{})
	require.NoError(t, err)

	assert.True(t, result.CurrentDebt.IsZero())
	assert.True(t, f.reload(t, customer.ID).CurrentDebt.IsZero())
}

func TestPayInstallment_DebtReturnsExactly(t *testing.T) {
	tests := []struct {
		name        string
		debt        string
		principal   string
		count       int
		afterDebit  string
		installment string
	}{
		{"tenths", "0.1", "0.2", 1, "0.3", "0.2"},
		{"cents across installments", "0.1", "333.33", 2, "341.76", "170.83"},
		{"odd cents", "12.07", "99.99", 1, "112.06", "99.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			customer := f.customer(t, "5000", tt.debt)

			plan := f.directPlan(t, customer.ID, tt.principal, tt.count)
			assert.Equal(t, tt.afterDebit, f.reload(t, customer.ID).CurrentDebt.String())

			for _, installment := range plan.Installments {
				assert.Equal(t, tt.installment, installment.Amount.String())

				result, err := f.payments.PayInstallment(ctx, plan.Plan.ID, installment.ID, time.Time{})
				require.NoError(t, err)
				assert.Equal(t, result.CurrentDebt.String(), f.reload(t, customer.ID).CurrentDebt.String())
			}

			assert.Equal(t, tt.debt, f.reload(t, customer.ID).CurrentDebt.String())
			f.assertNoWarnings(t)
		})
	}
}

func TestCancelPlan_DebtReturnsExactly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.customer(t, "5000", "0.1")

	plan := f.directPlan(t, customer.ID, "333.33", 2)
	_, err := f.payments.PayInstallment(ctx, plan.Plan.ID, plan.Installments[0].ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "170.93", f.reload(t, customer.ID).CurrentDebt.String())

	unpaid, err := f.plans.UnpaidTotal(ctx, plan.Plan.ID)
	require.NoError(t, err)
	assert.Equal(t, "170.83", unpaid.String())

	_, err = f.plans.CancelPlan(ctx, plan.Plan.ID)
	require.NoError(t, err)

	assert.Equal(t, "0.1", f.reload(t, customer.ID).CurrentDebt.String())
	f.assertNoWarnings(t)
}
