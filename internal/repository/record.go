package repository

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"mibank/internal/domain"
	"mibank/internal/errors"
)

var validate = validator.New()

// accountRecord is the on-disk shape of an account. Pointer fields let the
// validator tell a missing key apart from a zero value.
type accountRecord struct {
	ID        *int64           `json:"id" validate:"required,min=1000000000,max=9999999999"`
	OwnerName *string          `json:"owner_name" validate:"required"`
	Email     *string          `json:"email" validate:"required"`
	Balance   *decimal.Decimal `json:"balance" validate:"required"`
}

func toRecord(a domain.Account) accountRecord {
	id, name, email, balance := a.ID, a.OwnerName, a.Email, a.Balance
	return accountRecord{ID: &id, OwnerName: &name, Email: &email, Balance: &balance}
}

func (r accountRecord) toAccount() domain.Account {
	return domain.Account{ID: *r.ID, OwnerName: *r.OwnerName, Email: *r.Email, Balance: *r.Balance}
}

func encodeAccounts(accounts []domain.Account) ([]byte, error) {
	records := make([]accountRecord, 0, len(accounts))
	for _, a := range accounts {
		records = append(records, toRecord(a))
	}
	return json.MarshalIndent(records, "", "  ")
}

func decodeAccounts(data []byte) ([]domain.Account, error) {
	var records []accountRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.NewDecodeError("account set is not a valid JSON array of accounts", err)
	}
	if records == nil {
		return nil, errors.NewDecodeError("account set is null", nil)
	}

	accounts := make([]domain.Account, 0, len(records))
	for i, r := range records {
		if err := validate.Struct(r); err != nil {
			return nil, errors.NewDecodeError(fmt.Sprintf("account record %d is malformed", i), err)
		}
		accounts = append(accounts, r.toAccount())
	}
	return accounts, nil
}

// checkAccountSet enforces the invariants every loaded set must satisfy,
// whichever codec produced it.
func checkAccountSet(accounts []domain.Account) error {
	seen := make(map[int64]struct{}, len(accounts))
	for _, a := range accounts {
		if _, dup := seen[a.ID]; dup {
			return errors.NewDecodeError(fmt.Sprintf("account %d appears more than once", a.ID), nil)
		}
		seen[a.ID] = struct{}{}
		if a.Balance.IsNegative() {
			return errors.NewDecodeError(fmt.Sprintf("account %d has negative balance %s", a.ID, a.Balance), nil)
		}
	}
	return nil
}
