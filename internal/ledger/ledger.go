package ledger

import (
	"context"
	"errors"

	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

var (
	// ErrInsufficientFunds occurs when the payer lacks the lamports to fund an allocation.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAddressAlreadyInUse indicates an allocation targeted an address that already holds an account.
	ErrAddressAlreadyInUse = errors.New("address already in use")

	// ErrAccountNotFound is returned when no account exists at an address.
	ErrAccountNotFound = errors.New("account not found")

	// ErrClockUnavailable is fatal for the enclosing transaction.
	ErrClockUnavailable = errors.New("clock unavailable")

	// ErrIllegalOwner is returned when a program writes to an account it does not own.
	ErrIllegalOwner = errors.New("illegal owner")

	// ErrLamportsOverflow is returned when a credit would overflow an account balance.
	ErrLamportsOverflow = errors.New("lamports overflow")

	// ErrInvalidAccountData is returned when a write would change an account's allocated length.
	ErrInvalidAccountData = errors.New("invalid account data length")
)

// SystemProgramID owns every plain wallet account and is the only program that may allocate.
var SystemProgramID = pubkey.PublicKey{}

// Account is the runtime's view of a storage account.
type Account struct {
	Address  pubkey.PublicKey
	Owner    pubkey.PublicKey
	Lamports uint64
	Data     []byte
}

// Allocatable reports whether an existing account may still be allocated to a program: only a
// plain system account without data qualifies. Its lamports count towards rent.
func Allocatable(a Account) bool {
	return a.Owner == SystemProgramID && len(a.Data) == 0
}

// Tx is a single all-or-nothing ledger transaction. Writes become visible only if the function
// passed to Ledger.Execute returns nil.
type Tx interface {
	// Now returns the transaction's clock reading. The clock is read once per transaction.
	Now(ctx context.Context) (int64, error)
	Account(ctx context.Context, address pubkey.PublicKey) (Account, error)
	// CreateAccount funds a rent-exempt account of space zeroed bytes at address from payer and
	// assigns it to owner. A prefunded system account without data is topped up, allocated and
	// assigned; any other existing account yields ErrAddressAlreadyInUse.
	CreateAccount(ctx context.Context, payer, address pubkey.PublicKey, space uint64, owner pubkey.PublicKey) error
	// WriteData replaces an account's data. Only the owning program may write, and the length
	// is fixed at allocation.
	WriteData(ctx context.Context, program, address pubkey.PublicKey, data []byte) error
}

// Ledger defines the contract implemented by ledger backends (e.g. Postgres).
type Ledger interface {
	// Execute runs fn inside one transaction holding exclusive locks on the writable accounts
	// until it commits or rolls back.
	Execute(ctx context.Context, writable []pubkey.PublicKey, fn func(Tx) error) error
	Account(ctx context.Context, address pubkey.PublicKey) (Account, error)
	// Airdrop credits lamports to a system account, creating it when missing, and returns the
	// new balance.
	Airdrop(ctx context.Context, address pubkey.PublicKey, lamports uint64) (uint64, error)
}
