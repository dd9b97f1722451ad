package store

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/koyif/cardbank/internal/domain"
	"github.com/koyif/cardbank/pkg/logger"
)

var cardPattern = regexp.MustCompile(`^\d{16}$`)

type fetcher interface {
	Balance(ctx context.Context, cardNumber string) (decimal.Decimal, error)
	Transactions(ctx context.Context, cardNumber string) ([]domain.TransactionRecord, error)
}

// Snapshot is a consistent view of the selected account: the balance and
// history always come from the same refresh. Stale means the last refresh
// failed and the data shown may be outdated; Loaded means at least one
// refresh has succeeded since the card was selected.
type Snapshot struct {
	Account domain.Account
	History []domain.TransactionRecord
	Loaded  bool
	Stale   bool
}

// Store holds the in-memory state of the currently selected card. Balance
// and history are only ever replaced wholesale from a backend read; the
// store never computes a balance locally.
type Store struct {
	fetcher fetcher

	mu         sync.Mutex
	cardNumber string
	generation uint64
	nextSeq    uint64
	appliedSeq uint64
	account    domain.Account
	history    []domain.TransactionRecord
	loaded     bool
	stale      bool
}

func New(fetcher fetcher) *Store {
	return &Store{fetcher: fetcher}
}

// Select switches the store to another card, discarding the prior card's
// state immediately. The caller is expected to trigger a Refresh next.
func (s *Store) Select(cardNumber string) error {
	if !cardPattern.MatchString(cardNumber) {
		return domain.ErrInvalidCard
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cardNumber = cardNumber
	s.generation++
	s.nextSeq = 0
	s.appliedSeq = 0
	s.account = domain.Account{CardNumber: cardNumber}
	s.history = nil
	s.loaded = false
	s.stale = false

	return nil
}

// Refresh re-reads balance and history and applies both atomically. Each
// call takes a sequence number at initiation and only the highest applied
// one wins. On failure the prior state is retained and the stale flag
// raised.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	cardNumber := s.cardNumber
	if cardNumber == "" {
		s.mu.Unlock()
		return domain.ErrNoCardSelected
	}
	generation := s.generation
	s.nextSeq++
	seq := s.nextSeq
	s.mu.Unlock()

	balance, err := s.fetcher.Balance(ctx, cardNumber)

	var history []domain.TransactionRecord
	if err == nil {
		history, err = s.fetcher.Transactions(ctx, cardNumber)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.generation != generation {
		// The card changed while this refresh was in flight.
		return nil
	}

	if seq <= s.appliedSeq {
		// Superseded by a newer refresh; its result, success or failure,
		// must not touch the fresher state.
		logger.Log.Warn("discarding superseded refresh",
			logger.String("card", cardNumber),
			logger.Int64("seq", int64(seq)))
		return nil
	}

	if err != nil {
		s.stale = true
		return fmt.Errorf("refreshing account state: %w", err)
	}

	s.appliedSeq = seq
	s.account = domain.Account{
		CardNumber:      cardNumber,
		Balance:         balance,
		LastRefreshedAt: time.Now(),
	}
	s.history = history
	s.loaded = true
	s.stale = false

	return nil
}

// Balance returns the last known balance of the selected card.
func (s *Store) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.account.Balance
}

// Snapshot returns a copy of the current state; the history slice is owned
// by the caller.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]domain.TransactionRecord, len(s.history))
	copy(history, s.history)

	return Snapshot{
		Account: s.account,
		History: history,
		Loaded:  s.loaded,
		Stale:   s.stale,
	}
}
