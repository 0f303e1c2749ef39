package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type store struct {
	db *sqlx.DB
	q  sqlx.ExtContext
	tx *sqlx.Tx
}

func NewStore(db *sqlx.DB) Store {
	return &store{db: db, q: db}
}

func (s *store) Customers() CustomerRepository {
	return NewCustomerRepository(s.q)
}

func (s *store) Plans() PlanRepository {
	return NewPlanRepository(s.q)
}

func (s *store) Installments() InstallmentRepository {
	return NewInstallmentRepository(s.q)
}

func (s *store) LateFees() LateFeeRepository {
	return NewLateFeeRepository(s.q)
}

func (s *store) Rates() RateRepository {
	return NewRateRepository(s.q)
}

func (s *store) WithinTx(ctx context.Context, fn func(Store) error) error {
	if s.tx != nil {
		return fn(s)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&store{db: s.db, q: tx, tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
