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

const installmentColumns = `i.id, i.plan_id, i.installment_number, i.amount, i.due_date, i.paid_date, i.status,
	i.late_days, i.late_fee_amount, i.created_at`

// dueInstallmentQuery joins an installment to its plan's customer.
const dueInstallmentQuery = `
	SELECT ` + installmentColumns + `, p.customer_id, c.name AS customer_name, c.email AS customer_email
	FROM installments i
	JOIN plans p ON p.id = i.plan_id
	JOIN customers c ON c.id = p.customer_id
`

type installmentRepository struct {
	q sqlx.ExtContext
}

func NewInstallmentRepository(q sqlx.ExtContext) InstallmentRepository {
	return &installmentRepository{q: q}
}

func (r *installmentRepository) CreateBatch(ctx context.Context, installments []*domain.Installment) error {
	query := r.q.Rebind(`
		INSERT INTO installments (id, plan_id, installment_number, amount, due_date, paid_date, status,
			late_days, late_fee_amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	now := time.Now().UTC()
	for _, installment := range installments {
		installment.CreatedAt = now
		_, err := r.q.ExecContext(ctx, query,
			installment.ID,
			installment.PlanID,
			installment.InstallmentNumber,
			installment.Amount,
			installment.DueDate,
			installment.PaidDate,
			installment.Status,
			installment.LateDays,
			installment.LateFeeAmount,
			installment.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *installmentRepository) GetByID(ctx context.Context, planID, id uuid.UUID) (*domain.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments i WHERE i.id = ? AND i.plan_id = ?`

	var installment domain.Installment
	err := sqlx.GetContext(ctx, r.q, &installment, r.q.Rebind(query), id, planID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &installment, nil
}

func (r *installmentRepository) ListByPlan(ctx context.Context, planID uuid.UUID) ([]*domain.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments i WHERE i.plan_id = ? ORDER BY i.installment_number`

	var installments []*domain.Installment
	if err := sqlx.SelectContext(ctx, r.q, &installments, r.q.Rebind(query), planID); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *installmentRepository) MarkPaid(ctx context.Context, planID, id uuid.UUID, paidDate time.Time) (bool, error) {
	query := `
		UPDATE installments
		SET status = ?, paid_date = ?
		WHERE id = ? AND plan_id = ? AND status <> ?
	`

	res, err := r.q.ExecContext(ctx, r.q.Rebind(query),
		domain.InstallmentStatusPaid,
		paidDate,
		id,
		planID,
		domain.InstallmentStatusPaid,
	)
	return affectedOne(res, err)
}

func (r *installmentRepository) SumUnpaidByPlan(ctx context.Context, planID uuid.UUID) (decimal.Decimal, error) {
	query := `SELECT amount FROM installments WHERE plan_id = ? AND status <> ?`

	var amounts []decimal.Decimal
	if err := sqlx.SelectContext(ctx, r.q, &amounts, r.q.Rebind(query), planID, domain.InstallmentStatusPaid); err != nil {
		return decimal.Zero, err
	}

	// Summed here rather than with SUM(), which sqlite evaluates in floating point.
	sum := decimal.Zero
	for _, amount := range amounts {
		sum = sum.Add(amount)
	}
	return sum, nil
}

func (r *installmentRepository) DeleteUnpaidByPlan(ctx context.Context, planID uuid.UUID) (int64, error) {
	query := `DELETE FROM installments WHERE plan_id = ? AND status <> ?`

	res, err := r.q.ExecContext(ctx, r.q.Rebind(query), planID, domain.InstallmentStatusPaid)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *installmentRepository) ListOverdueCandidates(ctx context.Context, today time.Time) ([]*domain.DueInstallment, error) {
	query := dueInstallmentQuery + `
		WHERE i.status = ? AND i.due_date < ? AND p.status = ?
		ORDER BY i.due_date, i.installment_number
	`

	return r.selectDue(ctx, query, domain.InstallmentStatusUnpaid, today, domain.PlanStatusApproved)
}

func (r *installmentRepository) MarkOverdue(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `UPDATE installments SET status = ? WHERE id = ? AND status = ?`

	res, err := r.q.ExecContext(ctx, r.q.Rebind(query),
		domain.InstallmentStatusOverdue,
		id,
		domain.InstallmentStatusUnpaid,
	)
	return affectedOne(res, err)
}

func (r *installmentRepository) ListOverdue(ctx context.Context) ([]*domain.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments i WHERE i.status = ? ORDER BY i.due_date`

	var installments []*domain.Installment
	if err := sqlx.SelectContext(ctx, r.q, &installments, r.q.Rebind(query), domain.InstallmentStatusOverdue); err != nil {
		return nil, err
	}

	return installments, nil
}

func (r *installmentRepository) UpdateLateDays(ctx context.Context, id uuid.UUID, lateDays int) error {
	query := `UPDATE installments SET late_days = ? WHERE id = ?`

	_, err := r.q.ExecContext(ctx, r.q.Rebind(query), lateDays, id)
	return err
}

func (r *installmentRepository) ListFeeCandidates(ctx context.Context) ([]*domain.DueInstallment, error) {
	query := dueInstallmentQuery + `
		WHERE i.status = ? AND i.late_fee_amount = 0
		ORDER BY i.due_date, i.installment_number
	`

	return r.selectDue(ctx, query, domain.InstallmentStatusOverdue)
}

func (r *installmentRepository) SetLateFee(ctx context.Context, id uuid.UUID, fee decimal.Decimal) (bool, error) {
	query := `UPDATE installments SET late_fee_amount = ? WHERE id = ? AND status = ? AND late_fee_amount = 0`

	res, err := r.q.ExecContext(ctx, r.q.Rebind(query), fee, id, domain.InstallmentStatusOverdue)
	return affectedOne(res, err)
}

func (r *installmentRepository) ListDueOn(ctx context.Context, date time.Time) ([]*domain.DueInstallment, error) {
	query := dueInstallmentQuery + `
		WHERE i.status = ? AND i.due_date = ? AND p.status = ?
		ORDER BY i.installment_number
	`

	return r.selectDue(ctx, query, domain.InstallmentStatusUnpaid, date, domain.PlanStatusApproved)
}

func (r *installmentRepository) selectDue(ctx context.Context, query string, args ...interface{}) ([]*domain.DueInstallment, error) {
	var installments []*domain.DueInstallment
	if err := sqlx.SelectContext(ctx, r.q, &installments, r.q.Rebind(query), args...); err != nil {
		return nil, err
	}

	return installments, nil
}
