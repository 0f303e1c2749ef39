package errors

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrappedErrorsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		code     string
	}{
		{"insufficient credit", WrapInsufficientCredit("1000", "500"), ErrInsufficientCredit, ErrCodeInsufficientCredit},
		{"customer not found", WrapCustomerNotFound("c1"), ErrCustomerNotFound, ErrCodeCustomerNotFound},
		{"customer inactive", WrapCustomerInactive("c1", "blocked"), ErrCustomerInactive, ErrCodeCustomerInactive},
		{"plan not found", WrapPlanNotFound("p1"), ErrPlanNotFound, ErrCodePlanNotFound},
		{"installment not found", WrapInstallmentNotFound("p1", "i1"), ErrInstallmentNotFound, ErrCodeInstallmentNotFound},
		{"already paid", WrapAlreadyPaid("i1"), ErrAlreadyPaid, ErrCodeAlreadyPaid},
		{"invalid count", WrapInvalidInstallmentCount(7), ErrInvalidInstallmentCount, ErrCodeInvalidInstallmentCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.code, CodeOf(wrapped))
		})
	}
}

func TestWrapPersistenceError(t *testing.T) {
	err := WrapPersistenceError(sql.ErrConnDone)

	assert.ErrorIs(t, err, ErrPersistence)
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.Equal(t, ErrCodePersistenceError, CodeOf(err))
	assert.Contains(t, err.Error(), "PERSISTENCE_ERROR")
}

func TestCodeOf_PlainError(t *testing.T) {
	assert.Equal(t, "", CodeOf(errors.New("boom")))
}
