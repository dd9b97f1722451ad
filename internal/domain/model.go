package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleCustomer Role = "CUSTOMER"
)

type TransactionKind string

const (
	KindTopup    TransactionKind = "TOPUP"
	KindWithdraw TransactionKind = "WITHDRAW"
)

// Wire returns the lowercase type the transaction endpoint expects.
func (k TransactionKind) Wire() string {
	if k == KindWithdraw {
		return "withdraw"
	}
	return "topup"
}

type TransactionStatus string

const (
	StatusSuccess  TransactionStatus = "SUCCESS"
	StatusFailed   TransactionStatus = "FAILED"
	StatusDeclined TransactionStatus = "DECLINED"
)

// Account is the selected card as last reported by the backend. The balance
// is always a backend read, never a locally computed value.
type Account struct {
	CardNumber      string
	Balance         decimal.Decimal
	LastRefreshedAt time.Time
}

type TransactionRecord struct {
	ID           int64
	CardNumber   string
	Kind         TransactionKind
	Amount       decimal.Decimal
	Status       TransactionStatus
	Message      string
	BalanceAfter *decimal.Decimal
	Timestamp    time.Time
}

type Card struct {
	CardNumber string
	Balance    decimal.Decimal
	CreatedAt  time.Time
}

// SessionIdentity is created at login and threaded through context; nothing
// outside the session gate mutates it.
type SessionIdentity struct {
	Username string
	Role     Role
	Token    string
}

// Outcome is the application-level result of a submitted transaction.
// Success=false means the backend declined; transport failures never
// produce an Outcome.
type Outcome struct {
	Success      bool
	Message      string
	BalanceAfter *decimal.Decimal
}
