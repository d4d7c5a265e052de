package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TransactionCreatedMessage tells the worker that a user's transactions
// changed and their modes should be refreshed. It carries identifiers only;
// the worker reads current data from the store.
type TransactionCreatedMessage struct {
	ID            uuid.UUID `json:"id"`
	UserID        int64     `json:"user_id"`
	TransactionID int64     `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionCreatedMessage(userID, transactionID int64) *TransactionCreatedMessage {
	return &TransactionCreatedMessage{
		ID:            uuid.New(),
		UserID:        userID,
		TransactionID: transactionID,
		Timestamp:     time.Now().UTC(),
	}
}

func (m *TransactionCreatedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionCreatedMessageFromJSON decodes a message and rejects ones without a user.
func TransactionCreatedMessageFromJSON(data []byte) (*TransactionCreatedMessage, error) {
	var msg TransactionCreatedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.UserID <= 0 {
		return nil, errors.New("message has no user_id")
	}
	return &msg, nil
}
