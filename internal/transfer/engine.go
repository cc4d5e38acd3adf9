// Package transfer holds the rules for moving money between two accounts.
// It performs no I/O; the account store supplies the accounts and persists
// the resulting posting.
package transfer

import (
	"mibank/internal/domain"
	"mibank/internal/errors"
)

type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Validate checks the parts of a request that do not depend on stored state.
func (e *Engine) Validate(req domain.TransferRequest) error {
	if !req.Amount.IsPositive() {
		return errors.NewInvalidAmount(req.Amount)
	}
	if req.SenderID == req.ReceiverID {
		return errors.NewSelfTransfer(req.SenderID)
	}
	return nil
}

// Apply computes both post-transfer balances. A nil account means the id was
// not found in the store. Checks run in order: sender exists, receiver exists,
// sender can cover the amount.
func (e *Engine) Apply(req domain.TransferRequest, sender, receiver *domain.Account) (domain.Posting, error) {
	if err := e.Validate(req); err != nil {
		return domain.Posting{}, err
	}
	if sender == nil {
		return domain.Posting{}, errors.NewAccountNotFound(req.SenderID)
	}
	if receiver == nil {
		return domain.Posting{}, errors.NewAccountNotFound(req.ReceiverID)
	}
	if sender.Balance.LessThan(req.Amount) {
		return domain.Posting{}, errors.NewInsufficientFunds(sender.ID, sender.Balance, req.Amount)
	}

	return domain.Posting{
		SenderID:        sender.ID,
		ReceiverID:      receiver.ID,
		Amount:          req.Amount,
		SenderBalance:   sender.Balance.Sub(req.Amount),
		ReceiverBalance: receiver.Balance.Add(req.Amount),
	}, nil
}
