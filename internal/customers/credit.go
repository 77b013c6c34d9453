package customers

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/flick-business/flick-business/internal/shared"
)

// Credit ledger errors. Both carry the policy-violation kind.
var (
	ErrCreditDisabled      = fmt.Errorf("%w: credit is not enabled for customer", shared.ErrPolicyViolation)
	ErrCreditLimitExceeded = fmt.Errorf("%w: credit limit exceeded", shared.ErrPolicyViolation)
)

// ApplyCreditSale books an on-credit purchase against the customer. A nil
// credit limit means unlimited. The check uses the post-sale balance, so a
// sale that lands exactly on the limit passes.
func (c *Customer) ApplyCreditSale(total decimal.Decimal, at time.Time) error {
	if !c.CreditEnabled {
		return fmt.Errorf("%w %q", ErrCreditDisabled, c.Name)
	}
	next := c.CreditBalance.Add(total)
	if c.CreditLimit != nil && next.GreaterThan(*c.CreditLimit) {
		return fmt.Errorf("%w: customer %q balance %s + sale %s exceeds limit %s",
			ErrCreditLimitExceeded, c.Name, c.CreditBalance, total, *c.CreditLimit)
	}
	c.CreditBalance = next
	c.LastCreditPurchaseAt = &at
	return nil
}

// ReverseCreditSale undoes a previously booked on-credit purchase. The
// balance is not floored at zero: reversing after partial settlement may
// legitimately leave it negative, which reads as credit in the customer's
// favor.
func (c *Customer) ReverseCreditSale(total decimal.Decimal) {
	c.CreditBalance = c.CreditBalance.Sub(total)
}

// SettleDebt subtracts a received payment from the balance.
func (c *Customer) SettleDebt(amount decimal.Decimal) {
	c.CreditBalance = c.CreditBalance.Sub(amount)
}
