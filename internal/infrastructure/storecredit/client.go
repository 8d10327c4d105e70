package storecredit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/tradeup-app/loyalty-service/internal/domain"
)

type creditRequest struct {
	CustomerRef    string          `json:"customer_ref"`
	IdempotencyKey string          `json:"idempotency_key"`
	Amount         decimal.Decimal `json:"amount"`
	Note           string          `json:"note,omitempty"`
}

type creditResponse struct {
	TransactionID string `json:"transaction_id"`
	Error         string `json:"error,omitempty"`
}

// HTTPCreditClient pushes ledger entries to the external credit account
// service. The ledger entry id doubles as the idempotency key, so a retried
// push for the same entry never credits twice.
type HTTPCreditClient struct {
	Address string
	client  *http.Client
}

func NewHTTPCreditClient(address string) *HTTPCreditClient {
	return &HTTPCreditClient{
		Address: address,
		client:  http.DefaultClient,
	}
}

func (h *HTTPCreditClient) Credit(memberRef, entryID string, amount decimal.Decimal, note string) (string, error) {
	requestBodyBytes, err := json.Marshal(creditRequest{
		CustomerRef:    memberRef,
		IdempotencyKey: entryID,
		Amount:         amount,
		Note:           note,
	})
	if err != nil {
		return "", err
	}

	response, err := h.client.Post(fmt.Sprintf("%s/credit-accounts/transactions", h.Address), "application/json", bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExternalSync, err)
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrExternalSync, err)
	}

	var body creditResponse
	if err := json.Unmarshal(responseBodyBytes, &body); err != nil {
		return "", fmt.Errorf("%w: unexpected response: %v", domain.ErrExternalSync, err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return "", fmt.Errorf("%w: %s", domain.ErrExternalSync, body.Error)
	}
	return body.TransactionID, nil
}
