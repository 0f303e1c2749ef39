// Package token issues the one-time approval tokens of token-confirmed plans.
// Signature and expiry are checked here; single use is enforced by the plan
// row, which forgets the token once it is redeemed.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/enesxunal/markaworld-g-sub000/internal/clock"
)

var ErrInvalid = errors.New("invalid approval token")

const audience = "plan-approval"

type Claims struct {
	PlanID     string `json:"plan_id"`
	CustomerID string `json:"customer_id"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewIssuer(secret string, ttl time.Duration, c clock.Clock) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, clock: c}
}

// Issue signs a token naming the plan awaiting approval.
func (i *Issuer) Issue(planID, customerID uuid.UUID) (string, error) {
	now := i.clock.Now()
	claims := Claims{
		PlanID:     planID.String(),
		CustomerID: customerID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   customerID.String(),
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign approval token: %w", err)
	}
	return signed, nil
}

// Verify checks signature and expiry and returns the plan the token names.
func (i *Issuer) Verify(raw string) (*Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if _, err := uuid.Parse(claims.PlanID); err != nil {
		return nil, fmt.Errorf("%w: bad plan id", ErrInvalid)
	}
	return &claims, nil
}
