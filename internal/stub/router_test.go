package stub

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koyif/cardbank/pkg/dto"
)

func TestBalanceBodyCarriesAmountsAsNumbers(t *testing.T) {
	server := httptest.NewServer(New("key").Router())
	t.Cleanup(server.Close)

	response, err := http.Get(server.URL + "/api/customer/balance/4000123456789012")
	require.NoError(t, err)
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	require.NoError(t, err)

	var decoded struct {
		CardNumber string  `json:"cardNumber"`
		Balance    float64 `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded), "balance must decode as a JSON number: %s", body)
	assert.Equal(t, "4000123456789012", decoded.CardNumber)
	assert.Equal(t, 1000.0, decoded.Balance)
}

func TestTransactionRequestEncodesAmountAsNumber(t *testing.T) {
	body, err := json.Marshal(dto.TransactionRequest{
		CardNumber: "4000123456789012",
		Pin:        "1234",
		Amount:     decimal.RequireFromString("50.00"),
		Type:       "topup",
	})
	require.NoError(t, err)

	var decoded struct {
		Amount float64 `json:"amount"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded), "amount must encode as a JSON number: %s", body)
	assert.Equal(t, 50.0, decoded.Amount)
}
