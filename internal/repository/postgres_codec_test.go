package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"mibank/internal/domain"
	"mibank/internal/errors"
)

type PostgresCodecSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *sql.DB
	codec     *PostgresCodec
}

func (s *PostgresCodecSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("mibank"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		s.T().Fatalf("Failed to start postgres container: %s", err)
	}
	s.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(s.T(), err)

	s.db, err = sql.Open("postgres", connStr)
	require.NoError(s.T(), err)

	s.codec, err = NewPostgresCodec(s.db, nil)
	require.NoError(s.T(), err)
}

func (s *PostgresCodecSuite) TearDownSuite() {
	if s.db != nil {
		s.db.Close()
	}
	if s.container != nil {
		testcontainers.TerminateContainer(s.container)
	}
}

func (s *PostgresCodecSuite) SetupTest() {
	_, err := s.db.Exec(`DELETE FROM ledger_accounts`)
	require.NoError(s.T(), err)
}

func (s *PostgresCodecSuite) TestEmptyTableLoadsEmptySet() {
	got, err := s.codec.Load()
	require.NoError(s.T(), err)
	assert.Empty(s.T(), got)
}

func (s *PostgresCodecSuite) TestRoundTripKeepsOrderAndPrecision() {
	orig := []domain.Account{
		seeded(domain.MaxAccountID, "123456789012345.6789"),
		seeded(domain.MinAccountID, "0.0001"),
		seeded(5555555555, "0"),
	}
	require.NoError(s.T(), s.codec.Save(orig))

	got, err := s.codec.Load()
	require.NoError(s.T(), err)
	assertSameAccounts(s.T(), orig, got)
}

func (s *PostgresCodecSuite) TestSaveReplacesPreviousSet() {
	require.NoError(s.T(), s.codec.Save([]domain.Account{seeded(1000000001, "1"), seeded(1000000002, "2")}))
	require.NoError(s.T(), s.codec.Save([]domain.Account{seeded(1000000003, "3")}))

	got, err := s.codec.Load()
	require.NoError(s.T(), err)
	assertSameAccounts(s.T(), []domain.Account{seeded(1000000003, "3")}, got)
}

func (s *PostgresCodecSuite) TestFailedSaveKeepsPreviousSet() {
	require.NoError(s.T(), s.codec.Save([]domain.Account{seeded(1000000001, "1")}))

	// The second row violates the primary key, so the whole copy is rolled back.
	err := s.codec.Save([]domain.Account{seeded(1000000002, "2"), seeded(1000000002, "3")})
	assert.ErrorIs(s.T(), err, errors.ErrIO)

	got, err := s.codec.Load()
	require.NoError(s.T(), err)
	assertSameAccounts(s.T(), []domain.Account{seeded(1000000001, "1")}, got)
}

func (s *PostgresCodecSuite) TestStoreOnPostgres() {
	store, err := Open(s.codec, nil)
	require.NoError(s.T(), err)

	a, err := store.Create("Ada", "ada@example.com")
	require.NoError(s.T(), err)
	b, err := store.Create("Bob", "bob@example.com")
	require.NoError(s.T(), err)

	_, err = store.ApplyTransfer(transferReq(a.ID, b.ID, "1"))
	assert.ErrorIs(s.T(), err, errors.ErrInsufficientFunds)

	reopened, err := Open(s.codec, nil)
	require.NoError(s.T(), err)
	assert.Len(s.T(), reopened.List(), 2)
}

func TestPostgresCodecSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping postgres codec tests in short mode")
	}
	suite.Run(t, new(PostgresCodecSuite))
}
