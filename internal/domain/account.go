package domain

import (
	"github.com/shopspring/decimal"
)

// Account ids are ten-digit account numbers.
const (
	MinAccountID int64 = 1_000_000_000
	MaxAccountID int64 = 9_999_999_999
)

type Account struct {
	ID        int64           `json:"account_id"`
	OwnerName string          `json:"owner_name"`
	Email     string          `json:"email"`
	Balance   decimal.Decimal `json:"balance"`
}

// AccountCodec persists the whole account set. Save must replace the previous
// durable copy atomically; Load returns an empty set when nothing was stored yet.
type AccountCodec interface {
	Save(accounts []Account) error
	Load() ([]Account, error)
}
