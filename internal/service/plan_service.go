package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/enesxunal/markaworld-g-sub000/internal/clock"
	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
	"github.com/enesxunal/markaworld-g-sub000/internal/repository"
	"github.com/enesxunal/markaworld-g-sub000/internal/token"
	customError "github.com/enesxunal/markaworld-g-sub000/pkg/errors"
	"github.com/enesxunal/markaworld-g-sub000/pkg/utils"
)

// PlanService builds installment plans, admits them against the customer's
// available credit and manages their lifecycle.
type PlanService struct {
	ledger
	schedule     domain.InterestScheduleTable
	tokens       *token.Issuer
	firstDueDays int
}

func NewPlanService(d Deps, schedule domain.InterestScheduleTable, tokens *token.Issuer, firstDueDays int) *PlanService {
	return &PlanService{
		ledger:       newLedger(d),
		schedule:     schedule,
		tokens:       tokens,
		firstDueDays: firstDueDays,
	}
}

// CreatePlan validates the request and either admits the plan right away
// (direct mode) or parks it until the customer redeems an approval token.
func (s *PlanService) CreatePlan(ctx context.Context, req *domain.CreatePlanRequest) (*domain.CreatePlanResponse, error) {
	mode := req.Mode
	if mode == "" {
		mode = domain.CreationModeDirect
	}
	if !mode.Valid() {
		return nil, customError.WrapInvalidCreationMode(string(mode))
	}

	plan, err := s.quote(req.CustomerID, req.Principal, req.InstallmentCount)
	if err != nil {
		return nil, err
	}
	plan.CreationMode = mode

	if mode == domain.CreationModeTokenConfirmed {
		return s.requestApproval(ctx, plan)
	}

	var (
		customer     *domain.Customer
		installments []*domain.Installment
	)
	err = s.withCustomer(ctx, plan.CustomerID, func(tx repository.Store) error {
		var err error
		customer, err = admit(ctx, tx, plan.CustomerID, plan.Principal)
		if err != nil {
			return err
		}

		firstDue := utils.CalculateFirstDueDate(clock.Today(s.clock), s.firstDueDays)
		plan.Status = domain.PlanStatusApproved
		plan.FirstDueDate = &firstDue

		if err := tx.Plans().Create(ctx, plan); err != nil {
			return customError.WrapPersistenceError(err)
		}

		installments, err = s.activate(ctx, tx, plan, firstDue)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"customer_id": plan.CustomerID,
		"plan_id":     plan.ID,
		"total":       plan.TotalWithInterest.String(),
		"count":       plan.InstallmentCount,
	}).Info("plan created")

	s.notifyCreated(ctx, customer, plan, installments)

	return &domain.CreatePlanResponse{Plan: plan, Installments: installments}, nil
}

// ApprovePlan redeems a one-time approval token. Admission control runs now,
// against the debt at approval time, and due dates count from today.
func (s *PlanService) ApprovePlan(ctx context.Context, rawToken string) (*domain.CreatePlanResponse, error) {
	claims, err := s.tokens.Verify(rawToken)
	if err != nil {
		return nil, customError.WrapInvalidApprovalToken("approval token is invalid or expired")
	}

	planID, err := uuid.Parse(claims.PlanID)
	if err != nil {
		return nil, customError.WrapInvalidApprovalToken("approval token names no plan")
	}

	plan, err := s.getPlan(ctx, s.store, planID)
	if err != nil {
		return nil, err
	}

	var (
		customer     *domain.Customer
		installments []*domain.Installment
	)
	err = s.withCustomer(ctx, plan.CustomerID, func(tx repository.Store) error {
		current, err := s.getPlan(ctx, tx, planID)
		if err != nil {
			return err
		}
		if current.Status != domain.PlanStatusPendingApproval {
			return customError.WrapInvalidApprovalToken("approval token was already used")
		}

		customer, err = admit(ctx, tx, plan.CustomerID, plan.Principal)
		if err != nil {
			return err
		}

		firstDue := utils.CalculateFirstDueDate(clock.Today(s.clock), s.firstDueDays)
		ok, err := tx.Plans().Approve(ctx, plan.ID, rawToken, firstDue)
		if err != nil {
			return customError.WrapPersistenceError(err)
		}
		if !ok {
			return customError.WrapInvalidApprovalToken("approval token was already used")
		}

		plan.Status = domain.PlanStatusApproved
		plan.FirstDueDate = &firstDue
		plan.ApprovalToken = nil

		installments, err = s.activate(ctx, tx, plan, firstDue)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"customer_id": plan.CustomerID,
		"plan_id":     plan.ID,
	}).Info("plan approved")

	s.notifyCreated(ctx, customer, plan, installments)

	return &domain.CreatePlanResponse{Plan: plan, Installments: installments}, nil
}

// CancelPlan cancels an approved or pending plan. Unpaid and overdue
// installments are removed and their amounts credited back; paid history and
// late fee records stay.
func (s *PlanService) CancelPlan(ctx context.Context, planID uuid.UUID) (*domain.PlanDetails, error) {
	plan, err := s.getPlan(ctx, s.store, planID)
	if err != nil {
		return nil, err
	}

	var reversed decimal.Decimal
	err = s.withCustomer(ctx, plan.CustomerID, func(tx repository.Store) error {
		current, err := s.getPlan(ctx, tx, planID)
		if err != nil {
			return err
		}
		if current.Status == domain.PlanStatusCancelled {
			return customError.WrapInvalidPlanStatus(planID.String(), current.Status)
		}

		ok, err := tx.Plans().UpdateStatus(ctx, planID, current.Status, domain.PlanStatusCancelled)
		if err != nil {
			return customError.WrapPersistenceError(err)
		}
		if !ok {
			return customError.WrapInvalidPlanStatus(planID.String(), current.Status)
		}

		// Pending plans were never debited and have no installments.
		if current.Status != domain.PlanStatusApproved {
			return nil
		}

		reversed, err = tx.Installments().SumUnpaidByPlan(ctx, planID)
		if err != nil {
			return customError.WrapPersistenceError(err)
		}
		if _, err := tx.Installments().DeleteUnpaidByPlan(ctx, planID); err != nil {
			return customError.WrapPersistenceError(err)
		}
		if reversed.IsZero() {
			return nil
		}
		return s.credit(ctx, tx, current.CustomerID, reversed, "plan cancellation")
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"customer_id": plan.CustomerID,
		"plan_id":     planID,
		"reversed":    reversed.String(),
	}).Info("plan cancelled")

	return s.GetPlan(ctx, planID)
}

// GetPlan returns a plan with its installments and what is still owed on it.
func (s *PlanService) GetPlan(ctx context.Context, planID uuid.UUID) (*domain.PlanDetails, error) {
	plan, err := s.getPlan(ctx, s.store, planID)
	if err != nil {
		return nil, err
	}

	installments, err := s.store.Installments().ListByPlan(ctx, planID)
	if err != nil {
		return nil, customError.WrapPersistenceError(err)
	}

	unpaid, err := s.UnpaidTotal(ctx, planID)
	if err != nil {
		return nil, err
	}

	return &domain.PlanDetails{Plan: plan, Installments: installments, UnpaidTotal: unpaid}, nil
}

// UnpaidTotal sums the installments of a plan that are not paid.
func (s *PlanService) UnpaidTotal(ctx context.Context, planID uuid.UUID) (decimal.Decimal, error) {
	total, err := s.store.Installments().SumUnpaidByPlan(ctx, planID)
	if err != nil {
		return decimal.Zero, customError.WrapPersistenceError(err)
	}
	return total, nil
}

// quote prices a plan without touching storage.
func (s *PlanService) quote(customerID uuid.UUID, principal decimal.Decimal, count int) (*domain.Plan, error) {
	if !principal.IsPositive() {
		return nil, customError.WrapInvalidAmount(principal.String())
	}

	rate, ok := s.schedule.Rate(count)
	if !ok {
		return nil, customError.WrapInvalidInstallmentCount(count)
	}

	total := utils.CalculateTotalWithInterest(principal, rate)

	return &domain.Plan{
		ID:                uuid.New(),
		CustomerID:        customerID,
		Principal:         principal,
		InterestRate:      rate,
		TotalWithInterest: total,
		InstallmentCount:  count,
		InstallmentAmount: utils.CalculateInstallmentAmount(total, count),
	}, nil
}

// requestApproval stores a pending plan carrying a fresh approval token.
// Nothing is debited until the token is redeemed.
func (s *PlanService) requestApproval(ctx context.Context, plan *domain.Plan) (*domain.CreatePlanResponse, error) {
	customer, err := s.store.Customers().GetByID(ctx, plan.CustomerID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapCustomerNotFound(plan.CustomerID.String())
	}
	if err != nil {
		return nil, customError.WrapPersistenceError(err)
	}
	if !customer.IsActive() {
		return nil, customError.WrapCustomerInactive(customer.ID.String(), customer.Status)
	}

	raw, err := s.tokens.Issue(plan.ID, plan.CustomerID)
	if err != nil {
		return nil, err
	}

	plan.Status = domain.PlanStatusPendingApproval
	plan.ApprovalToken = &raw

	if err := s.store.Plans().Create(ctx, plan); err != nil {
		return nil, customError.WrapPersistenceError(err)
	}

	s.log.WithFields(logrus.Fields{
		"customer_id": plan.CustomerID,
		"plan_id":     plan.ID,
	}).Info("plan awaiting approval")

	s.notify(ctx, domain.Event{
		Kind:             domain.EventApprovalRequested,
		CustomerID:       customer.ID,
		CustomerName:     customer.Name,
		CustomerEmail:    customer.Email,
		PlanID:           plan.ID,
		InstallmentCount: plan.InstallmentCount,
		Amount:           plan.InstallmentAmount,
		Total:            plan.TotalWithInterest,
		ApprovalToken:    raw,
	})

	return &domain.CreatePlanResponse{Plan: plan, Installments: []*domain.Installment{}, ApprovalToken: raw}, nil
}

// activate debits the account by the plan total and writes the schedule.
func (s *PlanService) activate(ctx context.Context, tx repository.Store, plan *domain.Plan, firstDue time.Time) ([]*domain.Installment, error) {
	if err := tx.Customers().Debit(ctx, plan.CustomerID, plan.TotalWithInterest); err != nil {
		return nil, customError.WrapPersistenceError(err)
	}

	installments := make([]*domain.Installment, 0, plan.InstallmentCount)
	for n := 1; n <= plan.InstallmentCount; n++ {
		installments = append(installments, &domain.Installment{
			ID:                uuid.New(),
			PlanID:            plan.ID,
			InstallmentNumber: n,
			Amount:            plan.InstallmentAmount,
			DueDate:           utils.CalculateDueDate(firstDue, n),
			Status:            domain.InstallmentStatusUnpaid,
			LateFeeAmount:     decimal.Zero,
		})
	}

	if err := tx.Installments().CreateBatch(ctx, installments); err != nil {
		return nil, customError.WrapPersistenceError(err)
	}
	return installments, nil
}

func (s *PlanService) notifyCreated(ctx context.Context, customer *domain.Customer, plan *domain.Plan, installments []*domain.Installment) {
	event := domain.Event{
		Kind:             domain.EventPlanCreated,
		CustomerID:       customer.ID,
		CustomerName:     customer.Name,
		CustomerEmail:    customer.Email,
		PlanID:           plan.ID,
		InstallmentCount: plan.InstallmentCount,
		Amount:           plan.InstallmentAmount,
		Total:            plan.TotalWithInterest,
		UnpaidTotal:      plan.TotalWithInterest,
	}
	if len(installments) > 0 {
		event.DueDate = installments[0].DueDate
	}
	s.notify(ctx, event)
}

func (s *PlanService) getPlan(ctx context.Context, store repository.Store, planID uuid.UUID) (*domain.Plan, error) {
	plan, err := store.Plans().GetByID(ctx, planID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapPlanNotFound(planID.String())
	}
	if err != nil {
		return nil, customError.WrapPersistenceError(err)
	}
	return plan, nil
}

// admit loads the customer under lock and applies admission control against
// the debt read in this same transaction.
func admit(ctx context.Context, tx repository.Store, customerID uuid.UUID, principal decimal.Decimal) (*domain.Customer, error) {
	customer, err := lockedCustomer(ctx, tx, customerID)
	if err != nil {
		return nil, err
	}
	if !customer.IsActive() {
		return nil, customError.WrapCustomerInactive(customer.ID.String(), customer.Status)
	}

	available := customer.AvailableCredit()
	if principal.GreaterThan(available) {
		return nil, customError.WrapInsufficientCredit(principal.String(), available.String())
	}
	return customer, nil
}
