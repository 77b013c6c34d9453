package shared

// PaymentMethod enumerates how a sale, expense or settlement was paid.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "CASH"
	PaymentCreditCard   PaymentMethod = "CREDIT_CARD"
	PaymentDebitCard    PaymentMethod = "DEBIT_CARD"
	PaymentPix          PaymentMethod = "PIX"
	PaymentBankTransfer PaymentMethod = "BANK_TRANSFER"
	// PaymentOnCredit defers payment and tracks it against the customer's
	// debt balance.
	PaymentOnCredit PaymentMethod = "ON_CREDIT"
)

// Valid reports whether the value is a known payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCreditCard, PaymentDebitCard, PaymentPix, PaymentBankTransfer, PaymentOnCredit:
		return true
	}
	return false
}
