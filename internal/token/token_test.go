package token

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enesxunal/markaworld-g-sub000/internal/clock"
)

func TestIssuer_RoundTrip(t *testing.T) {
	c := clock.NewFixed(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC))
	issuer := NewIssuer("secret", 48*time.Hour, c)
	planID, customerID := uuid.New(), uuid.New()

	raw, err := issuer.Issue(planID, customerID)
	require.NoError(t, err)

	claims, err := issuer.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, planID.String(), claims.PlanID)
	assert.Equal(t, customerID.String(), claims.CustomerID)
}

func TestIssuer_Rejects(t *testing.T) {
	c := clock.NewFixed(time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC))
	issuer := NewIssuer("secret", time.Hour, c)

	raw, err := issuer.Issue(uuid.New(), uuid.New())
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewIssuer("other", time.Hour, c).Verify(raw)
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		c.Advance(2 * time.Hour)
		defer c.Advance(-2 * time.Hour)

		_, err := issuer.Verify(raw)
		assert.ErrorIs(t, err, ErrInvalid)
	})
}
