package vault

import (
	"context"
	"errors"
	"fmt"

	"github.com/congo-pay/anchor_vault/internal/chain"
	"github.com/congo-pay/anchor_vault/internal/ledger"
	"github.com/congo-pay/anchor_vault/internal/notification"
	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

// Service exposes vault operations backed by the runtime.
type Service struct {
	runtime  *chain.Runtime
	program  *Program
	notifier notification.Notifier
}

// NewService builds a vault service instance. The program must be registered with runtime.
func NewService(runtime *chain.Runtime, program *Program, notifier notification.Notifier) *Service {
	return &Service{runtime: runtime, program: program, notifier: notifier}
}

// ProgramID returns the id of the vault program this service talks to.
func (s *Service) ProgramID() pubkey.PublicKey {
	return s.program.ID()
}

// Address derives the vault address for owner without touching the ledger.
func (s *Service) Address(owner pubkey.PublicKey) (Derivation, error) {
	return s.program.Deriver().Derive(owner)
}

// Get loads and verifies the vault for owner.
func (s *Service) Get(ctx context.Context, owner pubkey.PublicKey) (Vault, error) {
	derived, err := s.Address(owner)
	if err != nil {
		return Vault{}, err
	}

	acct, err := s.runtime.Ledger().Account(ctx, derived.Address)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return Vault{}, ErrNotFound
		}
		return Vault{}, err
	}
	if acct.Owner != s.program.ID() {
		return Vault{}, ErrAccountOwnedByWrongProgram
	}

	var record Record
	if err := record.UnmarshalBinary(acct.Data); err != nil {
		return Vault{}, err
	}
	if record.Owner != owner {
		return Vault{}, ErrConstraintSeeds
	}

	return Vault{Address: derived.Address, Bump: derived.Bump, Record: record}, nil
}

// Initialize submits a signed initialize_vault transaction and returns the created vault.
func (s *Service) Initialize(ctx context.Context, tx *chain.Transaction) (InitializeResult, error) {
	if tx == nil {
		return InitializeResult{}, chain.ErrMissingInstruction
	}
	if tx.Instruction.ProgramID != s.program.ID() {
		return InitializeResult{}, fmt.Errorf("%w: %s", ErrInvalidProgramID, tx.Instruction.ProgramID)
	}
	if len(tx.Instruction.Accounts) < initializeAccountCount {
		return InitializeResult{}, ErrNotEnoughAccountKeys
	}
	owner := tx.Instruction.Accounts[accountAuthority].Address

	receipt, err := s.runtime.Submit(ctx, tx)
	if err != nil {
		return InitializeResult{}, err
	}

	v, err := s.Get(ctx, owner)
	if err != nil {
		return InitializeResult{}, fmt.Errorf("load initialized vault: %w", err)
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindVaultInitialized,
			Destination: owner.String(),
			Body:        fmt.Sprintf("Vault %s initialized", v.Address),
		})
	}

	return InitializeResult{TransactionID: receipt.TransactionID, Vault: v}, nil
}
