package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransferRequest struct {
	SenderID   int64
	ReceiverID int64
	Amount     decimal.Decimal
}

// Posting is the pair of balances a transfer will leave behind.
type Posting struct {
	SenderID        int64
	ReceiverID      int64
	Amount          decimal.Decimal
	SenderBalance   decimal.Decimal
	ReceiverBalance decimal.Decimal
}

type Receipt struct {
	TransactionID   uuid.UUID       `json:"transaction_id"`
	SenderID        int64           `json:"sender_id"`
	ReceiverID      int64           `json:"receiver_id"`
	Amount          decimal.Decimal `json:"amount"`
	SenderBalance   decimal.Decimal `json:"sender_balance"`
	ReceiverBalance decimal.Decimal `json:"receiver_balance"`
	CreatedAt       time.Time       `json:"created_at"`
}
