package vault

import (
	"errors"

	"github.com/congo-pay/anchor_vault/internal/ledger"
	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

var (
	// ErrInvalidVaultAddress indicates the supplied vault account is not the address derived
	// from the authority.
	ErrInvalidVaultAddress = errors.New("invalid vault address")

	// ErrAlreadyInitialized indicates a vault record already exists for the owner.
	ErrAlreadyInitialized = errors.New("vault already initialized")

	// ErrMissingSignerAuthorization indicates the authority did not sign the transaction.
	ErrMissingSignerAuthorization = errors.New("missing signer authorization")

	// ErrAccountNotWritable indicates an account the instruction mutates was passed read-only.
	ErrAccountNotWritable = errors.New("account not writable")

	// ErrNotEnoughAccountKeys indicates the instruction is missing accounts.
	ErrNotEnoughAccountKeys = errors.New("not enough account keys")

	// ErrInvalidProgramID indicates the system program account is not the system program.
	ErrInvalidProgramID = errors.New("invalid program id")

	// ErrInstructionFallbackNotFound indicates unknown instruction data.
	ErrInstructionFallbackNotFound = errors.New("instruction not found")

	// ErrAccountDiscriminatorMismatch indicates stored bytes carry another type tag.
	ErrAccountDiscriminatorMismatch = errors.New("account discriminator mismatch")

	// ErrAccountDidNotDeserialize indicates stored bytes have the wrong length.
	ErrAccountDidNotDeserialize = errors.New("account did not deserialize")

	// ErrAccountOwnedByWrongProgram indicates the account at the vault address is not ours.
	ErrAccountOwnedByWrongProgram = errors.New("account owned by wrong program")

	// ErrConstraintSeeds indicates a record whose owner does not derive its address.
	ErrConstraintSeeds = errors.New("record owner does not match vault address")

	// ErrNotFound indicates no vault exists for the owner yet.
	ErrNotFound = errors.New("vault not found")
)

// Errors raised by collaborators and surfaced unchanged.
var (
	ErrInsufficientFunds          = ledger.ErrInsufficientFunds
	ErrClockUnavailable           = ledger.ErrClockUnavailable
	ErrAddressDerivationExhausted = pubkey.ErrAddressDerivationExhausted
)
