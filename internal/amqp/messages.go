package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"kivo/internal/core"
)

type Kind string

const (
	TransactionUpserted Kind = "transaction_upserted"
	TransactionDeleted  Kind = "transaction_deleted"
	AccountUpserted     Kind = "account_upserted"
)

// Event mirrors one finance mutation so downstream consumers can replicate
// it into the durable store. Upserts carry the full record; deletes only
// the id. EventID identifies the event itself, letting consumers dedupe
// broker redeliveries.
type Event struct {
	EventID       string            `json:"eventId"`
	Kind          Kind              `json:"kind"`
	Transaction   *core.Transaction `json:"transaction,omitempty"`
	TransactionID string            `json:"transactionId,omitempty"`
	Account       *core.Account     `json:"account,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

func NewTransactionUpserted(t core.Transaction) *Event {
	return &Event{
		EventID:       uuid.NewString(),
		Kind:          TransactionUpserted,
		Transaction:   &t,
		TransactionID: t.ID,
		Timestamp:     time.Now(),
	}
}

func NewTransactionDeleted(id string) *Event {
	return &Event{
		EventID:       uuid.NewString(),
		Kind:          TransactionDeleted,
		TransactionID: id,
		Timestamp:     time.Now(),
	}
}

func NewAccountUpserted(a core.Account) *Event {
	return &Event{
		EventID:   uuid.NewString(),
		Kind:      AccountUpserted,
		Account:   &a,
		Timestamp: time.Now(),
	}
}

func (e *Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func EventFromJSON(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
