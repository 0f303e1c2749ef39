package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// LimitAdjustmentPolicy moves a customer's credit limit after payments and
// overdue transitions. Rates are percentages.
type LimitAdjustmentPolicy struct {
	MaxLimit     decimal.Decimal
	IncreaseRate decimal.Decimal
	DecreaseRate decimal.Decimal
}

// OnPayment raises the limit by IncreaseRate percent, capped at MaxLimit.
// Applied on every payment, late ones included.
func (p LimitAdjustmentPolicy) OnPayment(current decimal.Decimal) decimal.Decimal {
	raised := current.Mul(hundred.Add(p.IncreaseRate)).Div(hundred)
	return decimal.Min(raised, p.MaxLimit).Round(2)
}

// OnOverdueTransition lowers the limit by DecreaseRate percent. There is no
// floor other than zero, so repeated transitions decay the limit towards zero.
func (p LimitAdjustmentPolicy) OnOverdueTransition(current decimal.Decimal) decimal.Decimal {
	lowered := current.Mul(hundred.Sub(p.DecreaseRate)).Div(hundred)
	if lowered.IsNegative() {
		return decimal.Zero
	}
	return lowered.Round(2)
}
