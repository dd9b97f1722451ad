package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/koyif/cardbank/internal/config"
	"github.com/koyif/cardbank/internal/domain"
	"github.com/koyif/cardbank/internal/session"
	"github.com/koyif/cardbank/pkg/dto"
	"github.com/koyif/cardbank/pkg/logger"
)

// Client talks to the transaction backend. It is stateless: every method
// maps one call to one request, classifies the failure and decodes the
// response. Retry policy, if any, belongs to callers.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

func New(cfg *config.Config) (*Client, error) {
	baseURL, err := url.Parse(cfg.BackendAddress)
	if err != nil {
		return nil, fmt.Errorf("error parsing backend address: %w", err)
	}

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
	}, nil
}

// Submit issues exactly one POST to the transaction endpoint. A response
// with success=false is not an error: it is an application-level decline
// and comes back as the Outcome. Errors are transport-class only.
func (c *Client) Submit(ctx context.Context, intent domain.ValidIntent) (*domain.Outcome, error) {
	reqBody := dto.TransactionRequest{
		CardNumber: intent.CardNumber,
		Pin:        intent.Pin,
		Amount:     intent.Amount,
		Type:       intent.Kind.Wire(),
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error encoding transaction request: %w", err)
	}

	target := c.baseURL.JoinPath("transaction")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error building transaction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.decorate(ctx, req)

	response, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer closeBody(response.Body)

	var txResponse dto.TransactionResponse
	if err := json.NewDecoder(response.Body).Decode(&txResponse); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	// The backend answers declined requests with success=false, sometimes on
	// a non-2xx status. Either way the message is authoritative.
	if response.StatusCode >= http.StatusBadRequest && txResponse.Message == "" {
		return nil, fmt.Errorf("%w: status %d", domain.ErrMalformedResponse, response.StatusCode)
	}

	return &domain.Outcome{
		Success:      txResponse.Success,
		Message:      txResponse.Message,
		BalanceAfter: txResponse.BalanceAfter,
	}, nil
}

// Balance fetches the authoritative balance for a card.
func (c *Client) Balance(ctx context.Context, cardNumber string) (decimal.Decimal, error) {
	var balance dto.Balance
	if err := c.get(ctx, &balance, "customer", "balance", cardNumber); err != nil {
		return decimal.Decimal{}, err
	}

	return balance.Balance, nil
}

// Transactions fetches the card's history in backend order (newest first).
func (c *Client) Transactions(ctx context.Context, cardNumber string) ([]domain.TransactionRecord, error) {
	var transactions []dto.Transaction
	if err := c.get(ctx, &transactions, "customer", "transactions", cardNumber); err != nil {
		return nil, err
	}

	return toRecords(transactions), nil
}

// AdminTransactions fetches the full unfiltered transaction collection.
func (c *Client) AdminTransactions(ctx context.Context) ([]domain.TransactionRecord, error) {
	var transactions []dto.Transaction
	if err := c.get(ctx, &transactions, "admin", "transactions"); err != nil {
		return nil, err
	}

	return toRecords(transactions), nil
}

// AdminCards fetches the full card collection.
func (c *Client) AdminCards(ctx context.Context) ([]domain.Card, error) {
	var cards []dto.Card
	if err := c.get(ctx, &cards, "admin", "cards"); err != nil {
		return nil, err
	}

	result := make([]domain.Card, len(cards))
	for i, card := range cards {
		result[i] = domain.Card{
			CardNumber: card.CardNumber,
			Balance:    card.Balance,
			CreatedAt:  parseTimestamp(card.CreatedAt),
		}
	}

	return result, nil
}

func (c *Client) get(ctx context.Context, out any, elems ...string) error {
	target := c.baseURL.JoinPath(elems...)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return fmt.Errorf("error building request: %w", err)
	}
	c.decorate(ctx, req)

	response, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer closeBody(response.Body)

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d from %s", domain.ErrMalformedResponse, response.StatusCode, target.Path)
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	return nil
}

// decorate attaches the session token from the context identity and a fresh
// request id for correlation.
func (c *Client) decorate(ctx context.Context, req *http.Request) {
	if id, ok := session.IdentityFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+id.Token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", domain.ErrRequestTimeout, err)
	}

	return fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		logger.Log.Error("error while closing response body", logger.Error(err))
	}
}

func toRecords(transactions []dto.Transaction) []domain.TransactionRecord {
	records := make([]domain.TransactionRecord, len(transactions))
	for i, t := range transactions {
		records[i] = domain.TransactionRecord{
			ID:           t.ID,
			CardNumber:   t.CardNumber,
			Kind:         domain.TransactionKind(t.Type),
			Amount:       t.Amount,
			Status:       domain.TransactionStatus(t.Status),
			Message:      t.Message,
			BalanceAfter: t.BalanceAfter,
			Timestamp:    parseTimestamp(t.Timestamp),
		}
	}

	return records
}

// parseTimestamp accepts RFC 3339 as well as the zoneless layout the
// backend's LocalDateTime serializer produces. An unparseable timestamp is
// passed through as the zero time rather than failing the whole fetch.
func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}

	if ts, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return ts
	}

	if ts, err := time.Parse("2006-01-02T15:04:05.999999999", value); err == nil {
		return ts
	}

	logger.Log.Warn("unparseable timestamp in response", logger.String("timestamp", value))

	return time.Time{}
}
