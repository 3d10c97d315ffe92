// Package events publishes ledger events to message brokers.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/thablackcodes/gresh-finance/internal/domain"
	"github.com/thablackcodes/gresh-finance/internal/money"
)

// EventTypeTransactionCompleted is the eventType of TransactionCompletedEvent.
const EventTypeTransactionCompleted = "transaction.completed"

// TransactionCompletedEvent is published once per committed transaction row.
type TransactionCompletedEvent struct {
	EventID           string `json:"eventId"`
	EventType         string `json:"eventType"`
	EventTimestamp    string `json:"eventTimestamp"`
	TransactionID     string `json:"transactionId"`
	Reference         string `json:"reference"`
	TransferReference string `json:"transferReference,omitempty"`
	Type              string `json:"type"`
	Category          string `json:"category"`
	Amount            string `json:"amount"`
	BalanceAfter      string `json:"balanceAfter"`
	Status            string `json:"status"`
	FromAccountID     string `json:"fromAccountId,omitempty"`
	ToAccountID       string `json:"toAccountId,omitempty"`
	Timestamp         string `json:"timestamp"`
}

// NewTransactionCompletedEvent builds the event payload for tx.
func NewTransactionCompletedEvent(tx *domain.Transaction, now time.Time) TransactionCompletedEvent {
	event := TransactionCompletedEvent{
		EventID:        uuid.NewString(),
		EventType:      EventTypeTransactionCompleted,
		EventTimestamp: now.UTC().Format(time.RFC3339),
		TransactionID:  tx.ID.String(),
		Reference:      tx.Reference,
		Type:           string(tx.Type),
		Category:       string(tx.Category),
		Amount:         money.Format(tx.Amount),
		BalanceAfter:   money.Format(tx.BalanceAfter),
		Status:         string(tx.Status),
		Timestamp:      tx.CreatedAt.UTC().Format(time.RFC3339),
	}
	if tx.TransferReference != nil {
		event.TransferReference = *tx.TransferReference
	}
	if tx.FromAccountID != nil {
		event.FromAccountID = tx.FromAccountID.String()
	}
	if tx.ToAccountID != nil {
		event.ToAccountID = tx.ToAccountID.String()
	}
	return event
}

func marshalEvent(tx *domain.Transaction) ([]byte, error) {
	body, err := json.Marshal(NewTransactionCompletedEvent(tx, time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return body, nil
}
