package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
	"github.com/enesxunal/markaworld-g-sub000/internal/service"
)

type MockCustomerService struct {
	mock.Mock
}

func (m *MockCustomerService) CreateCustomer(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.CustomerResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerResponse), args.Error(1)
}

func (m *MockCustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.CustomerResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CustomerResponse), args.Error(1)
}

type MockPlanService struct {
	mock.Mock
}

func (m *MockPlanService) CreatePlan(ctx context.Context, req *domain.CreatePlanRequest) (*domain.CreatePlanResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreatePlanResponse), args.Error(1)
}

func (m *MockPlanService) ApprovePlan(ctx context.Context, token string) (*domain.CreatePlanResponse, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CreatePlanResponse), args.Error(1)
}

func (m *MockPlanService) CancelPlan(ctx context.Context, planID uuid.UUID) (*domain.PlanDetails, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlanDetails), args.Error(1)
}

func (m *MockPlanService) GetPlan(ctx context.Context, planID uuid.UUID) (*domain.PlanDetails, error) {
	args := m.Called(ctx, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlanDetails), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) PayInstallment(ctx context.Context, planID, installmentID uuid.UUID, paymentDate time.Time) (*domain.PaymentResult, error) {
	args := m.Called(ctx, planID, installmentID, paymentDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}

type MockCheckRunner struct {
	mock.Mock
}

func (m *MockCheckRunner) RunAll(ctx context.Context) (*service.CheckReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckReport), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, event domain.Event) {
	m.Called(ctx, event)
}
