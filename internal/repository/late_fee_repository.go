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

type lateFeeRepository struct {
	q sqlx.ExtContext
}

func NewLateFeeRepository(q sqlx.ExtContext) LateFeeRepository {
	return &lateFeeRepository{q: q}
}

func (r *lateFeeRepository) InitIfAbsent(ctx context.Context, record *domain.LateFeeRecord) (bool, error) {
	query := `
		INSERT INTO late_fee_records (id, installment_id, late_days, interest_amount, paid_amount, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (installment_id) DO NOTHING
	`

	r.stamp(record)
	res, err := r.q.ExecContext(ctx, r.q.Rebind(query), r.args(record)...)
	return affectedOne(res, err)
}

func (r *lateFeeRepository) Upsert(ctx context.Context, record *domain.LateFeeRecord) error {
	query := `
		INSERT INTO late_fee_records (id, installment_id, late_days, interest_amount, paid_amount, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (installment_id) DO UPDATE
		SET late_days = excluded.late_days, interest_amount = excluded.interest_amount, updated_at = excluded.updated_at
	`

	r.stamp(record)
	_, err := r.q.ExecContext(ctx, r.q.Rebind(query), r.args(record)...)
	return err
}

func (r *lateFeeRepository) GetByInstallmentID(ctx context.Context, installmentID uuid.UUID) (*domain.LateFeeRecord, error) {
	query := `
		SELECT id, installment_id, late_days, interest_amount, paid_amount, status, created_at, updated_at
		FROM late_fee_records
		WHERE installment_id = ?
	`

	var record domain.LateFeeRecord
	err := sqlx.GetContext(ctx, r.q, &record, r.q.Rebind(query), installmentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *lateFeeRepository) stamp(record *domain.LateFeeRecord) {
	now := time.Now().UTC()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = domain.LateFeeStatusUnpaid
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
}

func (r *lateFeeRepository) args(record *domain.LateFeeRecord) []interface{} {
	return []interface{}{
		record.ID,
		record.InstallmentID,
		record.LateDays,
		record.InterestAmount,
		record.PaidAmount,
		record.Status,
		record.CreatedAt,
		record.UpdatedAt,
	}
}
