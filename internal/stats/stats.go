package stats

import (
	"github.com/shopspring/decimal"

	"github.com/koyif/cardbank/internal/domain"
)

// Summary holds the administrator view's derived numbers. It is a pure
// projection over the fetched collections; the backend stays authoritative
// so nothing here is cached.
type Summary struct {
	TotalTransactions     int
	Successful            int
	Topups                int
	SuccessfulTopups      int
	Withdrawals           int
	SuccessfulWithdrawals int
	TotalCards            int
	TotalBalance          decimal.Decimal
}

func Summarize(transactions []domain.TransactionRecord, cards []domain.Card) Summary {
	s := Summary{
		TotalTransactions: len(transactions),
		TotalCards:        len(cards),
	}

	for _, t := range transactions {
		success := t.Status == domain.StatusSuccess
		if success {
			s.Successful++
		}

		switch t.Kind {
		case domain.KindTopup:
			s.Topups++
			if success {
				s.SuccessfulTopups++
			}
		case domain.KindWithdraw:
			s.Withdrawals++
			if success {
				s.SuccessfulWithdrawals++
			}
		}
	}

	for _, c := range cards {
		s.TotalBalance = s.TotalBalance.Add(c.Balance)
	}

	return s
}
