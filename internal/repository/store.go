package repository

import (
	stderrors "errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"mibank/internal/domain"
	"mibank/internal/errors"
	"mibank/internal/transfer"
)

// maxIDAttempts bounds the collision retries when drawing a new account id.
const maxIDAttempts = 64

// Store owns the in-memory account set and its durable copy. Mutations hold
// the write lock across compute, save and swap, so readers only ever observe
// states that have already been persisted.
type Store struct {
	mu       sync.RWMutex
	codec    domain.AccountCodec
	engine   *transfer.Engine
	accounts []domain.Account
	index    map[int64]int
	newID    func() int64
	now      func() time.Time
	logger   *slog.Logger
}

type Option func(*Store)

// WithIDGenerator replaces the random account id source.
func WithIDGenerator(fn func() int64) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		s.now = fn
	}
}

// Open loads the account set through codec and returns a ready store.
func Open(codec domain.AccountCodec, logger *slog.Logger, opts ...Option) (*Store, error) {
	s := &Store{
		codec:  codec,
		engine: transfer.NewEngine(),
		newID:  randomAccountID,
		now:    time.Now,
		logger: loggerOrDiscard(logger),
	}
	for _, opt := range opts {
		opt(s)
	}

	accounts, err := codec.Load()
	if err != nil {
		return nil, err
	}
	if err := checkAccountSet(accounts); err != nil {
		s.logger.Error("Loaded account set is inconsistent", "error", err)
		return nil, err
	}

	s.accounts = accounts
	s.index = buildIndex(accounts)
	s.logger.Info("Account store opened", "accounts", len(accounts))
	return s, nil
}

// Create registers a new account with a zero balance.
func (s *Store) Create(ownerName, email string) (domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.freshID()
	if err != nil {
		return domain.Account{}, err
	}

	account := domain.Account{ID: id, OwnerName: ownerName, Email: email}
	next := append(slices.Clone(s.accounts), account)
	if err := s.codec.Save(next); err != nil {
		s.logger.Error("Failed to persist new account", "account_id", id, "error", err)
		return domain.Account{}, storageError("persist new account", err)
	}

	s.accounts = next
	s.index[id] = len(next) - 1
	s.logger.Info("Account created successfully", "account_id", id)
	return account, nil
}

func (s *Store) Find(id int64) (domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		s.logger.Warn("Account not found", "account_id", id)
		return domain.Account{}, errors.NewAccountNotFound(id)
	}
	return s.accounts[i], nil
}

// List returns a copy of the account set in registration order.
func (s *Store) List() []domain.Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.accounts)
}

// ApplyTransfer debits the sender and credits the receiver as one persisted
// unit. If the save fails neither balance changes.
func (s *Store) ApplyTransfer(req domain.TransferRequest) (domain.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	posting, err := s.engine.Apply(req, s.lookup(req.SenderID), s.lookup(req.ReceiverID))
	if err != nil {
		s.logger.Warn("Transfer rejected",
			"sender_id", req.SenderID,
			"receiver_id", req.ReceiverID,
			"amount", req.Amount,
			"error", err)
		return domain.Receipt{}, err
	}

	next := slices.Clone(s.accounts)
	next[s.index[posting.SenderID]].Balance = posting.SenderBalance
	next[s.index[posting.ReceiverID]].Balance = posting.ReceiverBalance

	if err := s.codec.Save(next); err != nil {
		s.logger.Error("Failed to persist transfer",
			"sender_id", req.SenderID,
			"receiver_id", req.ReceiverID,
			"amount", req.Amount,
			"error", err)
		return domain.Receipt{}, storageError("persist transfer", err)
	}
	s.accounts = next

	receipt := domain.Receipt{
		TransactionID:   uuid.New(),
		SenderID:        posting.SenderID,
		ReceiverID:      posting.ReceiverID,
		Amount:          posting.Amount,
		SenderBalance:   posting.SenderBalance,
		ReceiverBalance: posting.ReceiverBalance,
		CreatedAt:       s.now().UTC(),
	}
	s.logger.Info("Transfer committed",
		"transaction_id", receipt.TransactionID,
		"sender_id", receipt.SenderID,
		"receiver_id", receipt.ReceiverID,
		"amount", receipt.Amount)
	return receipt, nil
}

// lookup returns a copy of the account or nil. Caller holds the lock.
func (s *Store) lookup(id int64) *domain.Account {
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	a := s.accounts[i]
	return &a
}

// freshID draws ids until one is unused. Caller holds the write lock.
func (s *Store) freshID() (int64, error) {
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		id := s.newID()
		if _, taken := s.index[id]; !taken {
			return id, nil
		}
		s.logger.Debug("Account id collision, retrying", "account_id", id, "attempt", attempt)
	}
	s.logger.Error("No free account id found", "attempts", maxIDAttempts)
	return 0, errors.NewAppErrorf(errors.InternalError, "no free account id after %d attempts", maxIDAttempts)
}

func randomAccountID() int64 {
	return domain.MinAccountID + rand.Int64N(domain.MaxAccountID-domain.MinAccountID+1)
}

func buildIndex(accounts []domain.Account) map[int64]int {
	index := make(map[int64]int, len(accounts))
	for i, a := range accounts {
		index[a.ID] = i
	}
	return index
}

func storageError(op string, err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return errors.NewIOError(op, err)
}

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
