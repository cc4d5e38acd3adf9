package repository

import (
	stderrors "errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mibank/internal/domain"
	"mibank/internal/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seeded(id int64, balance string) domain.Account {
	return domain.Account{ID: id, OwnerName: "owner", Email: "owner@example.com", Balance: dec(balance)}
}

func transferReq(sender, receiver int64, amount string) domain.TransferRequest {
	return domain.TransferRequest{SenderID: sender, ReceiverID: receiver, Amount: dec(amount)}
}

func openStore(t *testing.T, codec domain.AccountCodec, opts ...Option) *Store {
	t.Helper()
	s, err := Open(codec, nil, opts...)
	require.NoError(t, err)
	return s
}

func TestCreateAssignsUniqueTenDigitIDs(t *testing.T) {
	codec := NewMemoryCodec()
	s := openStore(t, codec)

	seen := map[int64]bool{}
	for i := 0; i < 200; i++ {
		a, err := s.Create("owner", "owner@example.com")
		require.NoError(t, err)
		assert.False(t, seen[a.ID], "duplicate id %d", a.ID)
		assert.GreaterOrEqual(t, a.ID, domain.MinAccountID)
		assert.LessOrEqual(t, a.ID, domain.MaxAccountID)
		assert.True(t, a.Balance.IsZero())
		seen[a.ID] = true
	}
	assert.Equal(t, 200, codec.Saves())
	assert.Len(t, s.List(), 200)
}

func TestCreateRetriesOnCollision(t *testing.T) {
	ids := []int64{1111111111, 1111111111, 1111111111, 2222222222}
	var calls int
	s := openStore(t, NewMemoryCodec(), WithIDGenerator(func() int64 {
		id := ids[calls]
		calls++
		return id
	}))

	a, err := s.Create("A", "a@example.com")
	require.NoError(t, err)
	b, err := s.Create("B", "b@example.com")
	require.NoError(t, err)

	assert.Equal(t, int64(1111111111), a.ID)
	assert.Equal(t, int64(2222222222), b.ID)
	assert.Equal(t, 4, calls)
}

func TestCreateGivesUpWhenIDSpaceExhausted(t *testing.T) {
	s := openStore(t, NewMemoryCodec(seeded(1111111111, "0")), WithIDGenerator(func() int64 {
		return 1111111111
	}))

	_, err := s.Create("A", "a@example.com")
	var appErr *errors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, errors.InternalError, appErr.Code)
	assert.Len(t, s.List(), 1)
}

func TestCreateSaveFailureLeavesSetUnchanged(t *testing.T) {
	codec := NewMemoryCodec()
	s := openStore(t, codec)
	codec.FailSaves(stderrors.New("disk full"))

	_, err := s.Create("A", "a@example.com")
	assert.ErrorIs(t, err, errors.ErrIO)
	assert.Empty(t, s.List())
}

func TestFind(t *testing.T) {
	s := openStore(t, NewMemoryCodec(seeded(1000000001, "12.34")))

	a, err := s.Find(1000000001)
	require.NoError(t, err)
	assert.True(t, a.Balance.Equal(dec("12.34")))

	_, err = s.Find(1000000002)
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)
}

func TestApplyTransfer(t *testing.T) {
	s := openStore(t, NewMemoryCodec(seeded(1000000001, "100"), seeded(1000000002, "0")))

	r, err := s.ApplyTransfer(transferReq(1000000001, 1000000002, "40"))
	require.NoError(t, err)
	assert.True(t, r.SenderBalance.Equal(dec("60")))
	assert.True(t, r.ReceiverBalance.Equal(dec("40")))
	assert.True(t, r.Amount.Equal(dec("40")))
	assert.NotEmpty(t, r.TransactionID.String())

	a, _ := s.Find(1000000001)
	b, _ := s.Find(1000000002)
	assert.True(t, a.Balance.Equal(dec("60")))
	assert.True(t, b.Balance.Equal(dec("40")))
}

func TestApplyTransferStampsReceipt(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.FixedZone("WAT", 3600))
	s := openStore(t, NewMemoryCodec(seeded(1000000001, "10"), seeded(1000000002, "0")),
		WithClock(func() time.Time { return at }))

	r, err := s.ApplyTransfer(transferReq(1000000001, 1000000002, "1"))
	require.NoError(t, err)
	assert.True(t, r.CreatedAt.Equal(at))
	assert.Equal(t, time.UTC, r.CreatedAt.Location())
}

func TestApplyTransferInsufficientFunds(t *testing.T) {
	codec := NewMemoryCodec(seeded(1000000001, "0"), seeded(1000000002, "0"))
	s := openStore(t, codec)

	_, err := s.ApplyTransfer(transferReq(1000000001, 1000000002, "50"))
	assert.ErrorIs(t, err, errors.ErrInsufficientFunds)

	for _, a := range s.List() {
		assert.True(t, a.Balance.IsZero())
	}
	assert.Zero(t, codec.Saves())
}

func TestApplyTransferUnknownAccount(t *testing.T) {
	codec := NewMemoryCodec(seeded(1000000001, "10"))
	s := openStore(t, codec)

	_, err := s.ApplyTransfer(transferReq(1999999999, 1000000001, "5"))
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)
	_, err = s.ApplyTransfer(transferReq(1000000001, 1999999999, "5"))
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)

	a, _ := s.Find(1000000001)
	assert.True(t, a.Balance.Equal(dec("10")))
	assert.Zero(t, codec.Saves())
}

func TestApplyTransferSaveFailureRollsBack(t *testing.T) {
	codec := NewMemoryCodec(seeded(1000000001, "100"), seeded(1000000002, "0"))
	s := openStore(t, codec)
	codec.FailSaves(stderrors.New("read-only file system"))

	_, err := s.ApplyTransfer(transferReq(1000000001, 1000000002, "40"))
	assert.ErrorIs(t, err, errors.ErrIO)

	a, _ := s.Find(1000000001)
	b, _ := s.Find(1000000002)
	assert.True(t, a.Balance.Equal(dec("100")))
	assert.True(t, b.Balance.IsZero())

	durable, err := codec.Load()
	require.NoError(t, err)
	assert.True(t, durable[0].Balance.Equal(dec("100")))
}

func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	s := openStore(t, NewMemoryCodec(seeded(1000000001, "100"), seeded(1000000002, "0")))

	const workers = 50
	var ok atomic.Int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_, err := s.ApplyTransfer(transferReq(1000000001, 1000000002, "30"))
			if err == nil {
				ok.Add(1)
				return
			}
			assert.ErrorIs(t, err, errors.ErrInsufficientFunds)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), ok.Load())
	a, _ := s.Find(1000000001)
	b, _ := s.Find(1000000002)
	assert.True(t, a.Balance.Equal(dec("10")))
	assert.True(t, b.Balance.Equal(dec("90")))
}

func TestConcurrentTransfersConserveTotal(t *testing.T) {
	s := openStore(t, NewMemoryCodec(
		seeded(1000000001, "1000"),
		seeded(1000000002, "1000"),
		seeded(1000000003, "1000"),
	))
	ids := []int64{1000000001, 1000000002, 1000000003}

	var wg sync.WaitGroup
	for i := 0; i < 300; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = s.ApplyTransfer(transferReq(ids[i%3], ids[(i+1)%3], "7.5"))
		}(i)
	}
	wg.Wait()

	total := decimal.Zero
	for _, a := range s.List() {
		assert.False(t, a.Balance.IsNegative())
		total = total.Add(a.Balance)
	}
	assert.True(t, total.Equal(dec("3000")), "total=%s", total)
}

func TestOpenRejectsInconsistentSets(t *testing.T) {
	_, err := Open(NewMemoryCodec(seeded(1000000001, "1"), seeded(1000000001, "2")), nil)
	assert.ErrorIs(t, err, errors.ErrDecode)

	_, err = Open(NewMemoryCodec(seeded(1000000001, "-1")), nil)
	assert.ErrorIs(t, err, errors.ErrDecode)
}

func TestStoreSurvivesReopenFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s := openStore(t, NewFileCodec(path, nil))

	a, err := s.Create("Ada", "ada@example.com")
	require.NoError(t, err)
	b, err := s.Create("Bob", "bob@example.com")
	require.NoError(t, err)

	reopened := openStore(t, NewFileCodec(path, nil))
	got, err := reopened.Find(a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.OwnerName)
	assert.Equal(t, []int64{a.ID, b.ID}, []int64{reopened.List()[0].ID, reopened.List()[1].ID})
}
