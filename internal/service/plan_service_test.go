package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
	"github.com/enesxunal/markaworld-g-sub000/internal/testutil"
	customError "github.com/enesxunal/markaworld-g-sub000/pkg/errors"
)

func TestCreatePlan_Direct(t *testing.T) {
	tests := []struct {
		name        string
		principal   string
		count       int
		total       string
		installment string
	}{
		{"three installments at 5%", "1000", 3, "1050.00", "350.00"},
		{"five installments at 10%", "1000", 5, "1100.00", "220.00"},
		{"single installment without interest", "1000", 1, "1000.00", "1000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			customer := f.customer(t, "5000", "0")

			resp := f.directPlan(t, customer.ID, tt.principal, tt.count)

			assert.Equal(t, domain.PlanStatusApproved, resp.Plan.Status)
			assert.Equal(t, domain.CreationModeDirect, resp.Plan.CreationMode)
			assert.True(t, resp.Plan.TotalWithInterest.Equal(dec(tt.total)), "total %s", resp.Plan.TotalWithInterest)
			assert.True(t, resp.Plan.InstallmentAmount.Equal(dec(tt.installment)), "installment %s", resp.Plan.InstallmentAmount)
			require.Len(t, resp.Installments, tt.count)

			stored, err := f.store.Installments().ListByPlan(context.Background(), resp.Plan.ID)
			require.NoError(t, err)
			assert.Len(t, stored, tt.count)

			assert.True(t, f.reload(t, customer.ID).CurrentDebt.Equal(dec(tt.total)))
		})
	}
}

func TestCreatePlan_DueDates(t *testing.T) {
	f := newFixture(t)
	customer := f.customer(t, "5000", "0")

	resp := f.directPlan(t, customer.ID, "1000", 3)

	require.NotNil(t, resp.Plan.FirstDueDate)
	assert.Equal(t, testutil.Date(2026, 3, 1), *resp.Plan.FirstDueDate)
	assert.Equal(t, testutil.Date(2026, 3, 1), resp.Installments[0].DueDate)
	assert.Equal(t, testutil.Date(2026, 4, 1), resp.Installments[1].DueDate)
	assert.Equal(t, testutil.Date(2026, 5, 1), resp.Installments[2].DueDate)

	for i, installment := range resp.Installments {
		assert.Equal(t, i+1, installment.InstallmentNumber)
		assert.Equal(t, domain.InstallmentStatusUnpaid, installment.Status)
	}
}

func TestCreatePlan_InstallmentSumWithinRounding(t *testing.T) {
	f := newFixture(t)
	customer := f.customer(t, "100000", "0")

	for _, principal := range []string{"999.99", "1000", "1234.57", "0.05", "77.77"} {
		for _, count := range domain.DefaultInterestSchedule.Counts() {
			resp := f.directPlan(t, customer.ID, principal, count)

			sum := decimal.Zero
			for _, installment := range resp.Installments {
				sum = sum.Add(installment.Amount)
			}

			drift := sum.Sub(resp.Plan.TotalWithInterest).Abs()
			bound := dec("0.005").Mul(decimal.NewFromInt(int64(count)))
			assert.True(t, drift.LessThanOrEqual(bound), "principal %s count %d drift %s", principal, count, drift)
		}
	}
}

func TestCreatePlan_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		limit     string
		debt      string
		principal string
		count     int
		mode      domain.CreationMode
		want      error
	}{
		{"principal over available credit", "5000", "4500", "600", 3, domain.CreationModeDirect, customError.ErrInsufficientCredit},
		{"principal over limit", "1000", "0", "1000.01", 1, domain.CreationModeDirect, customError.ErrInsufficientCredit},
		{"count not offered", "5000", "0", "100", 6, domain.CreationModeDirect, customError.ErrInvalidInstallmentCount},
		{"zero principal", "5000", "0", "0", 3, domain.CreationModeDirect, customError.ErrInvalidAmount},
		{"negative principal", "5000", "0", "-10", 3, domain.CreationModeDirect, customError.ErrInvalidAmount},
		{"unknown mode", "5000", "0", "100", 3, domain.CreationMode("layaway"), customError.ErrInvalidCreationMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			customer := f.customer(t, tt.limit, tt.debt)

			resp, err := f.plans.CreatePlan(context.Background(), &domain.CreatePlanRequest{
				CustomerID:       customer.ID,
				Principal:        dec(tt.principal),
				InstallmentCount: tt.count,
				Mode:             tt.mode,
			})

			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, f.reload(t, customer.ID).CurrentDebt.Equal(dec(tt.debt)), "debt must not change")
			assert.Empty(t, f.notifier.ofKind(domain.EventPlanCreated))
		})
	}
}

func TestCreatePlan_PrincipalEqualToAvailableIsAdmitted(t *testing.T) {
	f := newFixture(t)
	customer := f.customer(t, "1000", "0")

	resp := f.directPlan(t, customer.ID, "1000", 1)

	assert.Equal(t, domain.PlanStatusApproved, resp.Plan.Status)
}

func TestCreatePlan_CustomerChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.plans.CreatePlan(ctx, &domain.CreatePlanRequest{
		CustomerID:       uuid.New(),
		Principal:        dec("100"),
		InstallmentCount: 1,
	})
	assert.ErrorIs(t, err, customError.ErrCustomerNotFound)

	blocked := &domain.Customer{
		ID:          uuid.New(),
		Name:        "Mehmet Demir",
		CreditLimit: dec("5000"),
		CurrentDebt: decimal.Zero,
		Status:      domain.CustomerStatusBlocked,
	}
	require.NoError(t, f.store.Customers().Create(ctx, blocked))

	for _, mode := range []domain.CreationMode{domain.CreationModeDirect, domain.CreationModeTokenConfirmed} {
		_, err = f.plans.CreatePlan(ctx, &domain.CreatePlanRequest{
			CustomerID:       blocked.ID,
			Principal:        dec("100"),
			InstallmentCount: 1,
			Mode:             mode,
		})
		assert.ErrorIs(t, err, customError.ErrCustomerInactive, "mode %s", mode)
	}
}

func TestCreatePlan_NotifiesPlanCreated(t *testing.T) {
	f := newFixture(t)
	customer := f.customer(t, "5000", "0")

	resp := f.directPlan(t, customer.ID, "1000", 3)

	events := f.notifier.ofKind(domain.EventPlanCreated)
	require.Len(t, events, 1)
	assert.Equal(t, resp.Plan.ID, events[0].PlanID)
	assert.Equal(t, customer.Email, events[0].CustomerEmail)
	assert.Equal(t, 3, events[0].InstallmentCount)
	assert.True(t, events[0].Total.Equal(dec("1050")))
	assert.Equal(t, testutil.Date(2026, 3, 1), events[0].DueDate)
}

func TestCreatePlan_ConcurrentAdmission(t *testing.T) {
	f := newFixture(t)
	customer := f.customer(t, "5000", "0")

	const attempts = 10
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
		rejected int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := f.plans.CreatePlan(context.Background(), &domain.CreatePlanRequest{
				CustomerID:       customer.ID,
				Principal:        dec("1000"),
				InstallmentCount: 1,
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				admitted++
			case errors.Is(err, customError.ErrInsufficientCredit):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, admitted)
	assert.Equal(t, 5, rejected)
	assert.True(t, f.reload(t, customer.ID).CurrentDebt.Equal(dec("5000")))
}

func TestTokenConfirmedPlan_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.customer(t, "5000", "0")

	created, err := f.plans.CreatePlan(ctx, &domain.CreatePlanRequest{
		CustomerID:       customer.ID,
		Principal:        dec("1000"),
		InstallmentCount: 3,
		Mode:             domain.CreationModeTokenConfirmed,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.PlanStatusPendingApproval, created.Plan.Status)
	assert.NotEmpty(t, created.ApprovalToken)
	assert.Empty(t, created.Installments)
	assert.True(t, f.reload(t, customer.ID).CurrentDebt.IsZero(), "pending plans are not debited")

	requested := f.notifier.ofKind(domain.EventApprovalRequested)
	require.Len(t, requested, 1)
	assert.Equal(t, created.ApprovalToken, requested[0].ApprovalToken)

	// Due dates count from the day the customer approves.
	f.clock.AddDays(2)

	approved, err := f.plans.ApprovePlan(ctx, created.ApprovalToken)
	require.NoError(t, err)

	assert.Equal(t, domain.PlanStatusApproved, approved.Plan.Status)
	require.Len(t, approved.Installments, 3)
	assert.Equal(t, testutil.Date(2026, 3, 3), approved.Installments[0].DueDate)
	assert.True(t, f.reload(t, customer.ID).CurrentDebt.Equal(dec("1050")))
	assert.Len(t, f.notifier.ofKind(domain.EventPlanCreated), 1)

	stored, err := f.store.Plans().GetByID(ctx, created.Plan.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ApprovalToken)

	_, err = f.plans.ApprovePlan(ctx, created.ApprovalToken)
	assert.ErrorIs(t, err, customError.ErrInvalidApprovalToken)
	assert.True(t, f.reload(t, customer.ID).CurrentDebt.Equal(dec("1050")), "token is single use")
}

func TestApprovePlan_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.customer(t, "1500", "0")

	created, err := f.plans.CreatePlan(ctx, &domain.CreatePlanRequest{
		CustomerID:       customer.ID,
		Principal:        dec("1000"),
		InstallmentCount: 1,
		Mode:             domain.CreationModeTokenConfirmed,
	})
	require.NoError(t, err)

	t.Run("garbage token", func(t *testing.T) {
		_, err := f.plans.ApprovePlan(ctx, "not-a-token")
		assert.ErrorIs(t, err, customError.ErrInvalidApprovalToken)
	})

	t.Run("expired token", func(t *testing.T) {
		f.clock.AddDays(3)
		defer f.clock.AddDays(-3)

		_, err := f.plans.ApprovePlan(ctx, created.ApprovalToken)
		assert.ErrorIs(t, err, customError.ErrInvalidApprovalToken)
	})

	t.Run("credit used up before approval", func(t *testing.T) {
		f.directPlan(t, customer.ID, "1000", 1)

		_, err := f.plans.ApprovePlan(ctx, created.ApprovalToken)
		assert.ErrorIs(t, err, customError.ErrInsufficientCredit)

		stored, err := f.store.Plans().GetByID(ctx, created.Plan.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PlanStatusPendingApproval, stored.Status)
		assert.True(t, f.reload(t, customer.ID).CurrentDebt.Equal(dec("1000")))
	})
}

func TestCancelPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.customer(t, "5000", "0")

	resp := f.directPlan(t, customer.ID, "1000", 3)
	_, err := f.payments.PayInstallment(ctx, resp.Plan.ID, resp.Installments[0].ID, f.clock.Now())
	require.NoError(t, err)
	require.True(t, f.reload(t, customer.ID).CurrentDebt.Equal(dec("700")))

	details, err := f.plans.CancelPlan(ctx, resp.Plan.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.PlanStatusCancelled, details.Plan.Status)
	require.Len(t, details.Installments, 1, "paid history is kept")
	assert.Equal(t, domain.InstallmentStatusPaid, details.Installments[0].Status)
	assert.True(t, details.UnpaidTotal.IsZero())
	assert.True(t, f.reload(t, customer.ID).CurrentDebt.IsZero())

	_, err = f.plans.CancelPlan(ctx, resp.Plan.ID)
	assert.ErrorIs(t, err, customError.ErrInvalidPlanStatus)

	_, err = f.plans.CancelPlan(ctx, uuid.New())
	assert.ErrorIs(t, err, customError.ErrPlanNotFound)
}

func TestCancelPlan_Pending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.customer(t, "5000", "250")

	created, err := f.plans.CreatePlan(ctx, &domain.CreatePlanRequest{
		CustomerID:       customer.ID,
		Principal:        dec("1000"),
		InstallmentCount: 2,
		Mode:             domain.CreationModeTokenConfirmed,
	})
	require.NoError(t, err)

	details, err := f.plans.CancelPlan(ctx, created.Plan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PlanStatusCancelled, details.Plan.Status)
	assert.True(t, f.reload(t, customer.ID).CurrentDebt.Equal(dec("250")))

	_, err = f.plans.ApprovePlan(ctx, created.ApprovalToken)
	assert.ErrorIs(t, err, customError.ErrInvalidApprovalToken)
}

func TestGetPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	customer := f.customer(t, "5000", "0")
	resp := f.directPlan(t, customer.ID, "1000", 5)

	details, err := f.plans.GetPlan(ctx, resp.Plan.ID)
	require.NoError(t, err)
	assert.Equal(t, resp.Plan.ID, details.Plan.ID)
	assert.Len(t, details.Installments, 5)
	assert.True(t, details.UnpaidTotal.Equal(dec("1100")))

	_, err = f.plans.GetPlan(ctx, uuid.New())
	assert.ErrorIs(t, err, customError.ErrPlanNotFound)
}
