package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LiabilityType classifies a loan.
type LiabilityType string

const (
	LiabilityTypeAuto       LiabilityType = "auto-loan"
	LiabilityTypeHouse      LiabilityType = "house-loan"
	LiabilityTypeStudent    LiabilityType = "student-loan"
	LiabilityTypeCreditCard LiabilityType = "credit-card-debt"
	LiabilityTypePersonal   LiabilityType = "personal-loan"
)

// LiabilityTypes lists every supported liability type.
var LiabilityTypes = []LiabilityType{
	LiabilityTypeAuto,
	LiabilityTypeHouse,
	LiabilityTypeStudent,
	LiabilityTypeCreditCard,
	LiabilityTypePersonal,
}

// Valid reports whether t is a known liability type.
func (t LiabilityType) Valid() bool {
	for _, v := range LiabilityTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ParseLiabilityType converts s to a LiabilityType.
func ParseLiabilityType(s string) (LiabilityType, error) {
	t := LiabilityType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown liability type %q", s)
	}
	return t, nil
}

// Liability is a loan owed by the portfolio owner.
type Liability struct {
	Type              LiabilityType
	Name              string
	APR               decimal.Decimal // percent, e.g. 4.5
	OriginalPrincipal decimal.Decimal
	TenureMonths      int
	// Balance is the amount still owed once payments have been recorded.
	// Null means no payment was ever made.
	Balance decimal.NullDecimal
}

// Outstanding returns the amount still owed. No interest or amortization is
// applied: without recorded payments it is the original principal.
func (l Liability) Outstanding() decimal.Decimal {
	if l.Balance.Valid {
		return l.Balance.Decimal
	}
	return l.OriginalPrincipal
}
