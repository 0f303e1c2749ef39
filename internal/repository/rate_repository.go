package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
)

type rateRepository struct {
	q sqlx.ExtContext
}

func NewRateRepository(q sqlx.ExtContext) RateRepository {
	return &rateRepository{q: q}
}

func (r *rateRepository) Add(ctx context.Context, rate *domain.LatePaymentInterestRate) error {
	query := `
		INSERT INTO late_interest_rates (id, annual_rate, daily_rate, effective_from, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	rate.CreatedAt = time.Now().UTC()
	_, err := r.q.ExecContext(ctx, r.q.Rebind(query),
		rate.ID,
		rate.AnnualRate,
		rate.DailyRate,
		rate.EffectiveFrom,
		rate.CreatedAt,
	)

	return err
}

func (r *rateRepository) Current(ctx context.Context, date time.Time) (*domain.LatePaymentInterestRate, error) {
	query := `
		SELECT id, annual_rate, daily_rate, effective_from, created_at
		FROM late_interest_rates
		WHERE effective_from <= ?
		ORDER BY effective_from DESC, created_at DESC
		LIMIT 1
	`

	var rate domain.LatePaymentInterestRate
	err := sqlx.GetContext(ctx, r.q, &rate, r.q.Rebind(query), date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return &rate, nil
}
