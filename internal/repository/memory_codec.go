package repository

import (
	"slices"
	"sync"

	"mibank/internal/domain"
	"mibank/internal/errors"
)

// MemoryCodec keeps the "durable" copy in process memory. It backs ephemeral
// runs and lets tests seed balances or force save failures.
type MemoryCodec struct {
	mu       sync.Mutex
	accounts []domain.Account
	saves    int
	saveErr  error
}

func NewMemoryCodec(seed ...domain.Account) *MemoryCodec {
	return &MemoryCodec{accounts: slices.Clone(seed)}
}

func (c *MemoryCodec) Load() ([]domain.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accounts == nil {
		return []domain.Account{}, nil
	}
	return slices.Clone(c.accounts), nil
}

func (c *MemoryCodec) Save(accounts []domain.Account) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.saveErr != nil {
		return errors.NewIOError("save account set", c.saveErr)
	}
	c.accounts = slices.Clone(accounts)
	c.saves++
	return nil
}

// FailSaves makes every following Save fail with err. Pass nil to recover.
func (c *MemoryCodec) FailSaves(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.saveErr = err
}

// Saves returns the number of successful saves.
func (c *MemoryCodec) Saves() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saves
}
