package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var pinPattern = regexp.MustCompile(`^\d{4}$`)

// Intent is a user-composed, not yet submitted transaction. Amount and PIN
// are kept as entered so a failed attempt can be corrected and resubmitted.
type Intent struct {
	Kind       TransactionKind
	CardNumber string
	Amount     string
	Pin        string
}

// ValidIntent is an Intent that passed validation; its amount is parsed.
type ValidIntent struct {
	Kind       TransactionKind
	CardNumber string
	Amount     decimal.Decimal
	Pin        string
}

// Validate checks the intent without any I/O; rules apply in order, first
// failure wins. The balance guards withdrawals only; the backend remains
// the authority and may still decline.
func (i Intent) Validate(balance decimal.Decimal) (ValidIntent, error) {
	if strings.TrimSpace(i.Amount) == "" || strings.TrimSpace(i.Pin) == "" {
		return ValidIntent{}, ErrMissingField
	}

	if !pinPattern.MatchString(i.Pin) {
		return ValidIntent{}, ErrInvalidPin
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(i.Amount))
	if err != nil || !amount.IsPositive() {
		return ValidIntent{}, ErrInvalidAmount
	}

	if i.Kind == KindWithdraw && amount.GreaterThan(balance) {
		return ValidIntent{}, ErrInsufficientFunds
	}

	return ValidIntent{
		Kind:       i.Kind,
		CardNumber: i.CardNumber,
		Amount:     amount,
		Pin:        i.Pin,
	}, nil
}
