package repository

import (
	"database/sql"
	"embed"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"mibank/internal/domain"
	"mibank/internal/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresCodec mirrors the account set into the ledger_accounts table. Each
// Save replaces every row inside one transaction.
type PostgresCodec struct {
	db     DB
	logger *slog.Logger
}

func NewPostgresCodec(db DB, logger *slog.Logger) (*PostgresCodec, error) {
	c := &PostgresCodec{
		db:     db,
		logger: loggerOrDiscard(logger),
	}
	if err := c.Migrate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Migrate applies the embedded schema files in name order.
func (c *PostgresCodec) Migrate() error {
	files, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return errors.NewIOError("read migrations", err)
	}
	sort.Slice(files, func(i, j int) bool {
		return files[i].Name() < files[j].Name()
	})

	for _, f := range files {
		if !strings.HasSuffix(f.Name(), ".sql") {
			continue
		}
		script, err := migrationsFS.ReadFile("migrations/" + f.Name())
		if err != nil {
			return errors.NewIOError("read migration "+f.Name(), err)
		}
		if _, err := c.db.Exec(string(script)); err != nil {
			c.logger.Error("Migration failed", "migration", f.Name(), "error", err)
			return pqIOError("apply migration "+f.Name(), err)
		}
		c.logger.Debug("Migration applied", "migration", f.Name())
	}
	return nil
}

func (c *PostgresCodec) Load() ([]domain.Account, error) {
	rows, err := c.db.Query(`
		SELECT id, owner_name, email, balance::text
		FROM ledger_accounts ORDER BY position
	`)
	if err != nil {
		c.logger.Error("Failed to load accounts", "error", err)
		return nil, pqIOError("load accounts", err)
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		var a domain.Account
		var balanceStr string
		if err := rows.Scan(&a.ID, &a.OwnerName, &a.Email, &balanceStr); err != nil {
			return nil, errors.NewDecodeError("failed to scan account row", err)
		}
		balance, err := decimal.NewFromString(balanceStr)
		if err != nil {
			c.logger.Error("Failed to parse balance", "account_id", a.ID, "balance_str", balanceStr, "error", err)
			return nil, errors.NewDecodeError(fmt.Sprintf("account %d has unparsable balance", a.ID), err)
		}
		a.Balance = balance
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, pqIOError("iterate accounts", err)
	}
	return accounts, nil
}

func (c *PostgresCodec) Save(accounts []domain.Account) error {
	err := withTransaction(c.db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM ledger_accounts`); err != nil {
			return err
		}

		stmt, err := tx.Prepare(pq.CopyIn("ledger_accounts", "position", "id", "owner_name", "email", "balance"))
		if err != nil {
			return err
		}
		for i, a := range accounts {
			if _, err := stmt.Exec(i, a.ID, a.OwnerName, a.Email, a.Balance.String()); err != nil {
				stmt.Close()
				return err
			}
		}
		if _, err := stmt.Exec(); err != nil {
			stmt.Close()
			return err
		}
		return stmt.Close()
	})
	if err != nil {
		c.logger.Error("Failed to save accounts", "accounts", len(accounts), "error", err)
		return pqIOError("save accounts", err)
	}

	c.logger.Debug("Accounts saved", "accounts", len(accounts))
	return nil
}

// pqIOError keeps the Postgres error code in the details when there is one.
func pqIOError(op string, err error) *errors.AppError {
	appErr := errors.NewIOError(op, err)
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		appErr.WithDetails(fmt.Sprintf("postgres %s: %s", pqErr.Code, pqErr.Message))
	}
	return appErr
}
