package dto

import "github.com/shopspring/decimal"

// The backend serializes amounts as JSON numbers, not strings.
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

/**
  {
      "cardNumber": "4000123456789012",
      "pin": "1234",
      "amount": 50.00,
      "type": "topup"
  }
*/

type TransactionRequest struct {
	CardNumber string          `json:"cardNumber"`
	Pin        string          `json:"pin"`
	Amount     decimal.Decimal `json:"amount"`
	Type       string          `json:"type"`
}

/**
  {
      "success": true,
      "message": "Top-up successful",
      "cardNumber": "4000123456789012",
      "transactionType": "topup",
      "amount": 50.00,
      "balanceAfter": 1050.00,
      "timestamp": "2020-12-10T15:15:45",
      "transactionId": "c7f1e6a0-..."
  }
*/

type TransactionResponse struct {
	Success         bool             `json:"success"`
	Message         string           `json:"message"`
	CardNumber      string           `json:"cardNumber,omitempty"`
	TransactionType string           `json:"transactionType,omitempty"`
	Amount          *decimal.Decimal `json:"amount,omitempty"`
	BalanceAfter    *decimal.Decimal `json:"balanceAfter,omitempty"`
	Timestamp       string           `json:"timestamp,omitempty"`
	TransactionID   string           `json:"transactionId,omitempty"`
}

/**
  {
      "id": 42,
      "cardNumber": "4000123456789012",
      "type": "WITHDRAW",
      "amount": 200.00,
      "status": "DECLINED",
      "message": "Insufficient balance",
      "timestamp": "2020-12-09T16:09:57"
  }
*/

type Transaction struct {
	ID           int64            `json:"id"`
	CardNumber   string           `json:"cardNumber"`
	Type         string           `json:"type"`
	Amount       decimal.Decimal  `json:"amount"`
	Status       string           `json:"status"`
	Message      string           `json:"message"`
	BalanceAfter *decimal.Decimal `json:"balanceAfter,omitempty"`
	Timestamp    string           `json:"timestamp"`
}
