package dto

import "github.com/shopspring/decimal"

/**
  {
      "cardNumber": "4000123456789012",
      "balance": 1000.00
  }
*/

type Balance struct {
	CardNumber string          `json:"cardNumber"`
	Balance    decimal.Decimal `json:"balance"`
}
