package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
	"github.com/enesxunal/markaworld-g-sub000/internal/repository"
	customError "github.com/enesxunal/markaworld-g-sub000/pkg/errors"
)

// CustomerService opens credit accounts and reports on them.
type CustomerService struct {
	ledger
}

func NewCustomerService(d Deps) *CustomerService {
	return &CustomerService{ledger: newLedger(d)}
}

// CreateCustomer opens an active account with no debt.
func (s *CustomerService) CreateCustomer(ctx context.Context, req *domain.CreateCustomerRequest) (*domain.CustomerResponse, error) {
	if req.CreditLimit.IsNegative() {
		return nil, customError.WrapInvalidAmount(req.CreditLimit.String())
	}

	customer := &domain.Customer{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		CreditLimit: req.CreditLimit.Round(2),
		CurrentDebt: decimal.Zero,
		Status:      domain.CustomerStatusActive,
	}

	if err := s.store.Customers().Create(ctx, customer); err != nil {
		return nil, customError.WrapPersistenceError(err)
	}

	s.log.WithFields(logrus.Fields{
		"customer_id":  customer.ID,
		"credit_limit": customer.CreditLimit.String(),
	}).Info("customer created")

	return &domain.CustomerResponse{
		Customer:        customer,
		AvailableCredit: customer.AvailableCredit(),
	}, nil
}

// GetCustomer returns the account with its available credit.
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.CustomerResponse, error) {
	customer, err := s.store.Customers().GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, customError.WrapCustomerNotFound(id.String())
	}
	if err != nil {
		return nil, customError.WrapPersistenceError(err)
	}

	return &domain.CustomerResponse{
		Customer:        customer,
		AvailableCredit: customer.AvailableCredit(),
	}, nil
}
