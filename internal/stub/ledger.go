// Package stub is an in-process rendition of the transaction backend: the
// demo environment the real system ships with, reduced to the wire contract
// the client consumes. It backs the -demo mode and the HTTP tests.
package stub

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koyif/cardbank/internal/domain"
	"github.com/koyif/cardbank/pkg/dto"
)

var cardNumberPattern = regexp.MustCompile(`^\d{16}$`)

type card struct {
	number    string
	pinHash   string
	balance   decimal.Decimal
	createdAt time.Time
}

type transaction struct {
	id           int64
	cardNumber   string
	kind         domain.TransactionKind
	amount       decimal.Decimal
	status       domain.TransactionStatus
	message      string
	balanceAfter *decimal.Decimal
	timestamp    time.Time
}

// Backend is the seeded in-memory ledger. A single mutex serializes all
// state changes so a balance update and its transaction record are applied
// together.
type Backend struct {
	privateKey string

	mu           sync.Mutex
	cards        map[string]*card
	transactions []transaction
	nextID       int64
}

func New(privateKey string) *Backend {
	b := &Backend{
		privateKey: privateKey,
		cards:      make(map[string]*card),
	}

	b.seed("4000123456789012", "1234", "1000.00")
	b.seed("4000123456789013", "5678", "500.00")
	// Unsupported range: the gateway declines every transaction on it.
	b.seed("5000123456789012", "9999", "2000.00")

	return b
}

func (b *Backend) seed(number, pin, balance string) {
	b.cards[number] = &card{
		number:    number,
		pinHash:   hashPin(pin),
		balance:   decimal.RequireFromString(balance),
		createdAt: time.Now(),
	}
}

// The demo backend never stores a PIN, only its digest.
func hashPin(pin string) string {
	sum := sha256.Sum256([]byte(pin))
	return hex.EncodeToString(sum[:])
}

// Process applies the gateway and processor rules to one request. Format
// failures are declined without a record; everything past the format gate
// leaves a transaction record, declined or successful.
func (b *Backend) Process(req dto.TransactionRequest) dto.TransactionResponse {
	if !cardNumberPattern.MatchString(req.CardNumber) {
		return declined("Invalid card number format")
	}

	if !req.Amount.IsPositive() {
		return declined("Invalid amount")
	}

	kind, ok := kindFromWire(req.Type)
	if !ok {
		return declined("Invalid transaction type")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !strings.HasPrefix(req.CardNumber, "4") {
		b.record(req.CardNumber, kind, req.Amount, domain.StatusDeclined, "Card range not supported", nil)
		return declined("Card range not supported")
	}

	c, ok := b.cards[req.CardNumber]
	if !ok {
		b.record(req.CardNumber, kind, req.Amount, domain.StatusDeclined, "Invalid card", nil)
		return declined("Invalid card")
	}

	if hashPin(req.Pin) != c.pinHash {
		b.record(req.CardNumber, kind, req.Amount, domain.StatusDeclined, "Invalid PIN", nil)
		return declined("Invalid PIN")
	}

	if kind == domain.KindWithdraw && c.balance.LessThan(req.Amount) {
		b.record(req.CardNumber, kind, req.Amount, domain.StatusDeclined, "Insufficient balance", nil)
		return declined("Insufficient balance")
	}

	message := "Top-up successful"
	if kind == domain.KindWithdraw {
		c.balance = c.balance.Sub(req.Amount)
		message = "Withdrawal successful"
	} else {
		c.balance = c.balance.Add(req.Amount)
	}

	balanceAfter := c.balance
	b.record(req.CardNumber, kind, req.Amount, domain.StatusSuccess, message, &balanceAfter)

	amount := req.Amount

	return dto.TransactionResponse{
		Success:         true,
		Message:         message,
		CardNumber:      c.number,
		TransactionType: req.Type,
		Amount:          &amount,
		BalanceAfter:    &balanceAfter,
		Timestamp:       time.Now().Format(time.RFC3339),
		TransactionID:   uuid.NewString(),
	}
}

func (b *Backend) record(cardNumber string, kind domain.TransactionKind, amount decimal.Decimal, status domain.TransactionStatus, message string, balanceAfter *decimal.Decimal) {
	b.nextID++
	b.transactions = append(b.transactions, transaction{
		id:           b.nextID,
		cardNumber:   cardNumber,
		kind:         kind,
		amount:       amount,
		status:       status,
		message:      message,
		balanceAfter: balanceAfter,
		timestamp:    time.Now(),
	})
}

// CardBalance returns the current balance, or false for an unknown card.
func (b *Backend) CardBalance(cardNumber string) (dto.Balance, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.cards[cardNumber]
	if !ok {
		return dto.Balance{}, false
	}

	return dto.Balance{CardNumber: c.number, Balance: c.balance}, true
}

// CardTransactions returns the card's records, newest first.
func (b *Backend) CardTransactions(cardNumber string) []dto.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]dto.Transaction, 0)
	for i := len(b.transactions) - 1; i >= 0; i-- {
		if b.transactions[i].cardNumber == cardNumber {
			result = append(result, toDTO(b.transactions[i]))
		}
	}

	return result
}

// AllTransactions returns every record, newest first.
func (b *Backend) AllTransactions() []dto.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]dto.Transaction, 0, len(b.transactions))
	for i := len(b.transactions) - 1; i >= 0; i-- {
		result = append(result, toDTO(b.transactions[i]))
	}

	return result
}

// AllCards returns every provisioned card.
func (b *Backend) AllCards() []dto.Card {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := make([]dto.Card, 0, len(b.cards))
	for _, c := range b.cards {
		result = append(result, dto.Card{
			CardNumber: c.number,
			Balance:    c.balance,
			CreatedAt:  c.createdAt.Format(time.RFC3339),
		})
	}

	return result
}

func toDTO(t transaction) dto.Transaction {
	return dto.Transaction{
		ID:           t.id,
		CardNumber:   t.cardNumber,
		Type:         string(t.kind),
		Amount:       t.amount,
		Status:       string(t.status),
		Message:      t.message,
		BalanceAfter: t.balanceAfter,
		Timestamp:    t.timestamp.Format(time.RFC3339),
	}
}

func declined(message string) dto.TransactionResponse {
	return dto.TransactionResponse{Success: false, Message: message}
}

func kindFromWire(t string) (domain.TransactionKind, bool) {
	switch t {
	case "topup":
		return domain.KindTopup, true
	case "withdraw":
		return domain.KindWithdraw, true
	default:
		return "", false
	}
}
