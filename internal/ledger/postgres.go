package ledger

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

// Schema creates the accounts table used by PostgresLedger.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
    address    BYTEA PRIMARY KEY,
    owner      BYTEA NOT NULL,
    lamports   BIGINT NOT NULL CHECK (lamports >= 0),
    data       BYTEA NOT NULL DEFAULT ''::bytea,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// numericOutOfRange is the SQLSTATE raised when a BIGINT balance would overflow.
const numericOutOfRange = "22003"

// PostgresLedger persists accounts in PostgreSQL. Writable accounts are serialised with
// transaction-scoped advisory locks.
type PostgresLedger struct {
	db    *pgxpool.Pool
	clock Clock
}

// NewPostgresLedger constructs a Postgres-backed ledger implementation.
func NewPostgresLedger(db *pgxpool.Pool, clock Clock) *PostgresLedger {
	if clock == nil {
		clock = SystemClock{}
	}
	return &PostgresLedger{db: db, clock: clock}
}

// Migrate creates the ledger schema if it does not exist.
func (l *PostgresLedger) Migrate(ctx context.Context) error {
	if _, err := l.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("migrate accounts: %w", err)
	}
	return nil
}

// Execute runs fn in a single database transaction.
func (l *PostgresLedger) Execute(ctx context.Context, writable []pubkey.PublicKey, fn func(Tx) error) error {
	tx, err := l.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	for _, key := range lockKeys(writable) {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, key); err != nil {
			return fmt.Errorf("lock account: %w", err)
		}
	}

	if err := fn(&postgresTx{tx: tx, clock: &txClock{clock: l.clock}}); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Account returns the committed state of an account.
func (l *PostgresLedger) Account(ctx context.Context, address pubkey.PublicKey) (Account, error) {
	row := l.db.QueryRow(ctx, `SELECT owner, lamports, data FROM accounts WHERE address = $1`, address[:])
	return scanAccount(row, address)
}

// Airdrop credits a system account, creating it on first use.
func (l *PostgresLedger) Airdrop(ctx context.Context, address pubkey.PublicKey, lamports uint64) (uint64, error) {
	const query = `
        INSERT INTO accounts (address, owner, lamports)
        VALUES ($1, $2, $3)
        ON CONFLICT (address) DO UPDATE
            SET lamports = accounts.lamports + EXCLUDED.lamports, updated_at = now()
            WHERE accounts.owner = EXCLUDED.owner
        RETURNING lamports`
	if lamports > math.MaxInt64 {
		return 0, ErrLamportsOverflow
	}
	var balance int64
	err := l.db.QueryRow(ctx, query, address[:], SystemProgramID[:], int64(lamports)).Scan(&balance)
	if err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return 0, ErrIllegalOwner
		case errors.As(err, &pgErr) && pgErr.Code == numericOutOfRange:
			return 0, ErrLamportsOverflow
		}
		return 0, err
	}
	return uint64(balance), nil
}

type postgresTx struct {
	tx    pgx.Tx
	clock *txClock
}

func (t *postgresTx) Now(ctx context.Context) (int64, error) {
	return t.clock.now(ctx)
}

func (t *postgresTx) Account(ctx context.Context, address pubkey.PublicKey) (Account, error) {
	row := t.tx.QueryRow(ctx, `SELECT owner, lamports, data FROM accounts WHERE address = $1 FOR UPDATE`, address[:])
	return scanAccount(row, address)
}

func (t *postgresTx) CreateAccount(ctx context.Context, payer, address pubkey.PublicKey, space uint64, owner pubkey.PublicKey) error {
	var prefunded uint64
	existing, err := t.Account(ctx, address)
	switch {
	case err == nil:
		if !Allocatable(existing) {
			return ErrAddressAlreadyInUse
		}
		prefunded = existing.Lamports
	case !errors.Is(err, ErrAccountNotFound):
		return err
	}

	rent := MinimumBalance(space)
	if due := TopUp(rent, prefunded); due > 0 {
		payerAcct, err := t.Account(ctx, payer)
		if err != nil {
			if errors.Is(err, ErrAccountNotFound) {
				return ErrInsufficientFunds
			}
			return err
		}
		if payerAcct.Owner != SystemProgramID || payerAcct.Lamports < due {
			return ErrInsufficientFunds
		}
		if _, err := t.tx.Exec(ctx, `UPDATE accounts SET lamports = lamports - $1, updated_at = now() WHERE address = $2`,
			int64(due), payer[:]); err != nil {
			return err
		}
		prefunded += due
	}

	if _, err := t.tx.Exec(ctx, `
        INSERT INTO accounts (address, owner, lamports, data) VALUES ($1, $2, $3, $4)
        ON CONFLICT (address) DO UPDATE
            SET owner = EXCLUDED.owner, lamports = EXCLUDED.lamports, data = EXCLUDED.data, updated_at = now()`,
		address[:], owner[:], int64(prefunded), make([]byte, space)); err != nil {
		return err
	}
	return nil
}

func (t *postgresTx) WriteData(ctx context.Context, program, address pubkey.PublicKey, data []byte) error {
	acct, err := t.Account(ctx, address)
	if err != nil {
		return err
	}
	if acct.Owner != program {
		return ErrIllegalOwner
	}
	if len(data) != len(acct.Data) {
		return ErrInvalidAccountData
	}
	_, err = t.tx.Exec(ctx, `UPDATE accounts SET data = $1, updated_at = now() WHERE address = $2`, data, address[:])
	return err
}

func scanAccount(row pgx.Row, address pubkey.PublicKey) (Account, error) {
	var (
		owner    []byte
		lamports int64
		data     []byte
	)
	if err := row.Scan(&owner, &lamports, &data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	ownerKey, err := pubkey.FromBytes(owner)
	if err != nil {
		return Account{}, fmt.Errorf("account %s owner: %w", address, err)
	}
	return Account{Address: address, Owner: ownerKey, Lamports: uint64(lamports), Data: data}, nil
}

// lockKeys maps addresses to advisory lock keys in a stable order so concurrent transactions
// acquire overlapping locks in the same sequence.
func lockKeys(addresses []pubkey.PublicKey) []int64 {
	sorted := append([]pubkey.PublicKey(nil), addresses...)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i][:], sorted[j][:]) < 0 })

	keys := make([]int64, 0, len(sorted))
	for i, addr := range sorted {
		if i > 0 && addr == sorted[i-1] {
			continue
		}
		keys = append(keys, int64(binary.BigEndian.Uint64(addr[:8])))
	}
	return keys
}
