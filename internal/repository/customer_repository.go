package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
)

const customerColumns = `id, name, email, phone, credit_limit, current_debt, status, created_at, updated_at`

type customerRepository struct {
	q sqlx.ExtContext
}

func NewCustomerRepository(q sqlx.ExtContext) CustomerRepository {
	return &customerRepository{q: q}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	query := `
		INSERT INTO customers (id, name, email, phone, credit_limit, current_debt, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	customer.CreatedAt = now
	customer.UpdatedAt = now

	_, err := r.q.ExecContext(ctx, r.q.Rebind(query),
		customer.ID,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.CreditLimit,
		customer.CurrentDebt,
		customer.Status,
		customer.CreatedAt,
		customer.UpdatedAt,
	)

	return err
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return r.get(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
}

func (r *customerRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	return r.get(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`+forUpdate(r.q), id)
}

func (r *customerRepository) get(ctx context.Context, query string, id uuid.UUID) (*domain.Customer, error) {
	var customer domain.Customer
	err := sqlx.GetContext(ctx, r.q, &customer, r.q.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &customer, nil
}

func (r *customerRepository) Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	if r.q.DriverName() == DriverSQLite {
		debt, err := r.debt(ctx, id)
		if err != nil {
			return err
		}
		return r.setDebt(ctx, id, debt.Add(amount))
	}

	query := `
		UPDATE customers
		SET current_debt = current_debt + ?, updated_at = ?
		WHERE id = ?
	`

	return r.expectOne(r.q.ExecContext(ctx, r.q.Rebind(query), amount, time.Now().UTC(), id))
}

func (r *customerRepository) Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (bool, error) {
	if r.q.DriverName() == DriverSQLite {
		debt, err := r.debt(ctx, id)
		if err != nil {
			return false, err
		}
		if debt.LessThan(amount) {
			return true, r.setDebt(ctx, id, decimal.Zero)
		}
		return false, r.setDebt(ctx, id, debt.Sub(amount))
	}

	query := `
		UPDATE customers
		SET current_debt = current_debt - ?, updated_at = ?
		WHERE id = ? AND current_debt >= ?
	`

	now := time.Now().UTC()
	res, err := r.q.ExecContext(ctx, r.q.Rebind(query), amount, now, id, amount)
	if err != nil {
		return false, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return false, err
	} else if n == 1 {
		return false, nil
	}

	// The debt is smaller than the credit: clamp to zero.
	clampQuery := `UPDATE customers SET current_debt = 0, updated_at = ? WHERE id = ?`
	if err := r.expectOne(r.q.ExecContext(ctx, r.q.Rebind(clampQuery), now, id)); err != nil {
		return false, err
	}
	return true, nil
}

// debt and setDebt back the sqlite path, where money is TEXT and cannot be
// incremented in SQL. The services call Debit and Credit under the customer
// lock inside a transaction, and sqlite runs on a single connection, so the
// read and the write cannot interleave with another writer.
func (r *customerRepository) debt(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	var debt decimal.Decimal
	err := sqlx.GetContext(ctx, r.q, &debt, r.q.Rebind(`SELECT current_debt FROM customers WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, ErrNotFound
	}
	return debt, err
}

func (r *customerRepository) setDebt(ctx context.Context, id uuid.UUID, debt decimal.Decimal) error {
	query := `UPDATE customers SET current_debt = ?, updated_at = ? WHERE id = ?`
	return r.expectOne(r.q.ExecContext(ctx, r.q.Rebind(query), debt, time.Now().UTC(), id))
}

func (r *customerRepository) UpdateCreditLimit(ctx context.Context, id uuid.UUID, limit decimal.Decimal) error {
	query := `
		UPDATE customers
		SET credit_limit = ?, updated_at = ?
		WHERE id = ?
	`

	return r.expectOne(r.q.ExecContext(ctx, r.q.Rebind(query), limit, time.Now().UTC(), id))
}

func (r *customerRepository) expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
