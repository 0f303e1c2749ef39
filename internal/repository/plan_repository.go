package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
)

type planRepository struct {
	q sqlx.ExtContext
}

func NewPlanRepository(q sqlx.ExtContext) PlanRepository {
	return &planRepository{q: q}
}

func (r *planRepository) Create(ctx context.Context, plan *domain.Plan) error {
	query := `
		INSERT INTO plans (id, customer_id, principal, interest_rate, total_with_interest, installment_count,
			installment_amount, first_due_date, status, creation_mode, approval_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	_, err := r.q.ExecContext(ctx, r.q.Rebind(query),
		plan.ID,
		plan.CustomerID,
		plan.Principal,
		plan.InterestRate,
		plan.TotalWithInterest,
		plan.InstallmentCount,
		plan.InstallmentAmount,
		plan.FirstDueDate,
		plan.Status,
		plan.CreationMode,
		plan.ApprovalToken,
		plan.CreatedAt,
		plan.UpdatedAt,
	)

	return err
}

func (r *planRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error) {
	query := `
		SELECT id, customer_id, principal, interest_rate, total_with_interest, installment_count,
			installment_amount, first_due_date, status, creation_mode, approval_token, created_at, updated_at
		FROM plans
		WHERE id = ?
	`

	var plan domain.Plan
	err := sqlx.GetContext(ctx, r.q, &plan, r.q.Rebind(query), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &plan, nil
}

func (r *planRepository) Approve(ctx context.Context, id uuid.UUID, token string, firstDueDate time.Time) (bool, error) {
	query := `
		UPDATE plans
		SET status = ?, approval_token = NULL, first_due_date = ?, updated_at = ?
		WHERE id = ? AND status = ? AND approval_token = ?
	`

	res, err := r.q.ExecContext(ctx, r.q.Rebind(query),
		domain.PlanStatusApproved,
		firstDueDate,
		time.Now().UTC(),
		id,
		domain.PlanStatusPendingApproval,
		token,
	)
	return affectedOne(res, err)
}

func (r *planRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to string) (bool, error) {
	query := `
		UPDATE plans
		SET status = ?, approval_token = NULL, updated_at = ?
		WHERE id = ? AND status = ?
	`

	res, err := r.q.ExecContext(ctx, r.q.Rebind(query), to, time.Now().UTC(), id, from)
	return affectedOne(res, err)
}

func affectedOne(res sql.Result, err error) (bool, error) {
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
