// Package testutil provides a throwaway sqlite ledger for tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/enesxunal/markaworld-g-sub000/internal/domain"
	"github.com/enesxunal/markaworld-g-sub000/internal/repository"
)

// NewDB opens a migrated sqlite database in the test's temp dir.
func NewDB(t testing.TB) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	db, err := repository.Open(ctx, repository.DriverSQLite, filepath.Join(t.TempDir(), "ledger.db"), 0)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, repository.Migrate(ctx, db))
	return db
}

// NewStore returns a Store over NewDB.
func NewStore(t testing.TB) repository.Store {
	t.Helper()
	return repository.NewStore(NewDB(t))
}

// CreateCustomer inserts an active customer with the given limit and debt.
func CreateCustomer(t testing.TB, store repository.Store, limit, debt string) *domain.Customer {
	t.Helper()

	customer := &domain.Customer{
		ID:          uuid.New(),
		Name:        "Ayşe Yılmaz",
		Email:       "ayse@example.com",
		Phone:       "+905551112233",
		CreditLimit: decimal.RequireFromString(limit),
		CurrentDebt: decimal.RequireFromString(debt),
		Status:      domain.CustomerStatusActive,
	}
	require.NoError(t, store.Customers().Create(context.Background(), customer))
	return customer
}

// Reload fetches the current state of a customer.
func Reload(t testing.TB, store repository.Store, id uuid.UUID) *domain.Customer {
	t.Helper()

	customer, err := store.Customers().GetByID(context.Background(), id)
	require.NoError(t, err)
	return customer
}

// Date builds a UTC midnight.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
