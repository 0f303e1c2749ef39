package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
	"github.com/enesxunal/markaworld-g-sub000/internal/repository"
)

// MockStore hands out the mocks it holds. WithinTx runs fn against the same
// store so expectations apply inside transactions too.
type MockStore struct {
	mock.Mock
	CustomerRepo    *MockCustomerRepository
	PlanRepo        *MockPlanRepository
	InstallmentRepo *MockInstallmentRepository
	RateRepo        *MockRateRepository
}

func NewMockStore() *MockStore {
	return &MockStore{
		CustomerRepo:    &MockCustomerRepository{},
		PlanRepo:        &MockPlanRepository{},
		InstallmentRepo: &MockInstallmentRepository{},
		RateRepo:        &MockRateRepository{},
	}
}

func (m *MockStore) Customers() repository.CustomerRepository       { return m.CustomerRepo }
func (m *MockStore) Plans() repository.PlanRepository               { return m.PlanRepo }
func (m *MockStore) Installments() repository.InstallmentRepository { return m.InstallmentRepo }
func (m *MockStore) Rates() repository.RateRepository               { return m.RateRepo }

// LateFees is not mocked; tests reaching it fail loudly.
func (m *MockStore) LateFees() repository.LateFeeRepository {
	panic("mocks: LateFees not mocked")
}

func (m *MockStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}

// AssertAll checks the expectations of the store and every repository mock.
func (m *MockStore) AssertAll(t mock.TestingT) {
	m.AssertExpectations(t)
	m.CustomerRepo.AssertExpectations(t)
	m.PlanRepo.AssertExpectations(t)
	m.InstallmentRepo.AssertExpectations(t)
	m.RateRepo.AssertExpectations(t)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockCustomerRepository) Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	args := m.Called(ctx, id, amount)
	return args.Bool(0), args.Error(1)
}

func (m *MockCustomerRepository) UpdateCreditLimit(ctx context.Context, id uuid.UUID, limit decimal.Decimal) error {
	args := m.Called(ctx, id, limit)
	return args.Error(0)
}

type MockPlanRepository struct {
	mock.Mock
}

func (m *MockPlanRepository) Create(ctx context.Context, plan *domain.Plan) error {
	args := m.Called(ctx, plan)
	return args.Error(0)
}

func (m *MockPlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Plan), args.Error(1)
}

func (m *MockPlanRepository) Approve(ctx context.Context, id uuid.UUID, token string, firstDueDate time.Time) (bool, error) {
	args := m.Called(ctx, id, token, firstDueDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockPlanRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

type MockInstallmentRepository struct {
	mock.Mock
}

func (m *MockInstallmentRepository) CreateBatch(ctx context.Context, installments []*domain.Installment) error {
	args := m.Called(ctx, installments)
	return args.Error(0)
}

func (m *MockInstallmentRepository) GetByID(ctx context.Context, planID, id uuid.UUID) (*domain.Installment, error) {
	args := m.Called(ctx, planID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) ListByPlan(ctx context.Context, planID uuid.UUID) ([]*domain.Installment, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) MarkPaid(ctx context.Context, planID, id uuid.UUID, paidDate time.Time) (bool, error) {
	args := m.Called(ctx, planID, id, paidDate)
	return args.Bool(0), args.Error(1)
}

func (m *MockInstallmentRepository) SumUnpaidByPlan(ctx context.Context, planID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, planID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockInstallmentRepository) DeleteUnpaidByPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	args := m.Called(ctx, planID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInstallmentRepository) ListOverdueCandidates(ctx context.Context, today time.Time) ([]*domain.DueInstallment, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DueInstallment), args.Error(1)
}

func (m *MockInstallmentRepository) MarkOverdue(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockInstallmentRepository) ListOverdue(ctx context.Context) ([]*domain.Installment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Installment), args.Error(1)
}

func (m *MockInstallmentRepository) UpdateLateDays(ctx context.Context, id uuid.UUID, lateDays int) error {
	args := m.Called(ctx, id, lateDays)
	return args.Error(0)
}

func (m *MockInstallmentRepository) ListFeeCandidates(ctx context.Context) ([]*domain.DueInstallment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DueInstallment), args.Error(1)
}

func (m *MockInstallmentRepository) SetLateFee(ctx context.Context, id uuid.UUID, fee decimal.Decimal) (bool, error) {
	args := m.Called(ctx, id, fee)
	return args.Bool(0), args.Error(1)
}

func (m *MockInstallmentRepository) ListDueOn(ctx context.Context, date time.Time) ([]*domain.DueInstallment, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.DueInstallment), args.Error(1)
}

type MockRateRepository struct {
	mock.Mock
}

func (m *MockRateRepository) Add(ctx context.Context, rate *domain.LatePaymentInterestRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockRateRepository) Current(ctx context.Context, date time.Time) (*domain.LatePaymentInterestRate, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LatePaymentInterestRate), args.Error(1)
}
