package db

import (
	"math/big"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// NumericFromDecimal converts a decimal into a pgtype.Numeric parameter
// without passing through float64, so scale is preserved exactly.
func NumericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{Int: d.Coefficient(), Exp: d.Exponent(), Valid: true}
}

// NumericFromDecimalPtr maps nil to SQL NULL.
func NumericFromDecimalPtr(d *decimal.Decimal) pgtype.Numeric {
	if d == nil {
		return pgtype.Numeric{}
	}
	return NumericFromDecimal(*d)
}

// DecimalFromNumeric converts a scanned NUMERIC into a decimal. NULL and NaN
// collapse to zero; columns that may be NULL should go through
// DecimalPtrFromNumeric instead.
func DecimalFromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.NaN || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(new(big.Int).Set(n.Int), n.Exp)
}

// DecimalPtrFromNumeric converts a nullable NUMERIC into *decimal.Decimal.
func DecimalPtrFromNumeric(n pgtype.Numeric) *decimal.Decimal {
	if !n.Valid {
		return nil
	}
	d := DecimalFromNumeric(n)
	return &d
}
