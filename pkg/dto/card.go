package dto

import "github.com/shopspring/decimal"

/**
  {
      "cardNumber": "4000123456789012",
      "balance": 1000.00,
      "createdAt": "2020-12-01T09:00:00"
  }
*/

type Card struct {
	CardNumber string          `json:"cardNumber"`
	Balance    decimal.Decimal `json:"balance"`
	CreatedAt  string          `json:"createdAt,omitempty"`
}
