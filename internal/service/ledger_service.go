package service

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"mibank/internal/domain"
	"mibank/internal/errors"
	"mibank/internal/transfer"
)

// AccountStore is the persisted account set the service coordinates.
type AccountStore interface {
	Create(ownerName, email string) (domain.Account, error)
	Find(id int64) (domain.Account, error)
	List() []domain.Account
	ApplyTransfer(req domain.TransferRequest) (domain.Receipt, error)
}

// LedgerService is the entry point for front ends. It holds no state of its
// own beyond the store, so it is cheap to build per request.
type LedgerService struct {
	store  AccountStore
	engine *transfer.Engine
	logger *slog.Logger
}

func NewLedgerService(store AccountStore, logger *slog.Logger) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{
		store:  store,
		engine: transfer.NewEngine(),
		logger: logger,
	}
}

func (s *LedgerService) RegisterAccount(ownerName, email string) (*domain.Account, error) {
	ownerName, email = strings.TrimSpace(ownerName), strings.TrimSpace(email)
	if ownerName == "" || email == "" {
		return nil, errors.NewAppError(errors.InvalidInput, "owner name and email are required")
	}
	s.logger.Info("Registering account", "owner_name", ownerName)

	account, err := s.store.Create(ownerName, email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account registered", "account_id", account.ID)
	return &account, nil
}

type TransferRequest struct {
	SenderID   int64
	ReceiverID int64
	Amount     decimal.Decimal
}

func (s *LedgerService) Transfer(req *TransferRequest) (*domain.Receipt, error) {
	s.logger.Info("Processing transfer",
		"sender_id", req.SenderID,
		"receiver_id", req.ReceiverID,
		"amount", req.Amount)

	domainReq := domain.TransferRequest{
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Amount:     req.Amount,
	}
	if err := s.engine.Validate(domainReq); err != nil {
		s.logger.Warn("Transfer request invalid", "error", err)
		return nil, err
	}

	receipt, err := s.store.ApplyTransfer(domainReq)
	if err != nil {
		s.logger.Error("Transfer failed", "error", err)
		return nil, err
	}

	s.logger.Info("Transfer completed successfully", "transaction_id", receipt.TransactionID)
	return &receipt, nil
}

func (s *LedgerService) GetAccount(id int64) (*domain.Account, error) {
	account, err := s.store.Find(id)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *LedgerService) ListAccounts() []domain.Account {
	return s.store.List()
}

// ParseAccountID parses a ten-digit account number typed by a user.
func ParseAccountID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id < domain.MinAccountID || id > domain.MaxAccountID {
		return 0, errors.NewAppErrorf(errors.InvalidInput, "%q is not a valid account number", raw)
	}
	return id, nil
}

// ParseAmount parses a decimal amount typed by a user.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, errors.NewAppErrorf(errors.InvalidAmount, "%q is not a valid amount", raw).WithDetails(err.Error())
	}
	return amount, nil
}
