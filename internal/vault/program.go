package vault

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/congo-pay/anchor_vault/internal/chain"
	"github.com/congo-pay/anchor_vault/internal/ledger"
	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

var initializeVaultDiscriminator = discriminator("global:initialize_vault")

// Account positions for initialize_vault.
const (
	accountVault = iota
	accountAuthority
	accountSystemProgram
	initializeAccountCount
)

// Program is the vault program. Its identity is configuration, passed in at construction.
type Program struct {
	id      pubkey.PublicKey
	deriver Deriver
	logger  *slog.Logger
}

// NewProgram builds the vault program for the given program id.
func NewProgram(id pubkey.PublicKey, logger *slog.Logger) *Program {
	return &Program{id: id, deriver: NewDeriver(id), logger: logger}
}

func (p *Program) ID() pubkey.PublicKey {
	return p.id
}

// Deriver returns the address deriver bound to this program id.
func (p *Program) Deriver() Deriver {
	return p.deriver
}

// Process dispatches on the 8-byte instruction discriminator.
func (p *Program) Process(ctx context.Context, tx ledger.Tx, ix chain.Instruction) error {
	if len(ix.Data) < DiscriminatorSize {
		return ErrInstructionFallbackNotFound
	}
	switch {
	case bytes.Equal(ix.Data[:DiscriminatorSize], initializeVaultDiscriminator[:]):
		return p.initializeVault(ctx, tx, ix.Accounts)
	default:
		return ErrInstructionFallbackNotFound
	}
}

// initializeVault creates the vault record for the signing authority. Every check runs before
// the ledger is asked to allocate; any failure aborts the enclosing transaction.
func (p *Program) initializeVault(ctx context.Context, tx ledger.Tx, accounts []chain.AccountMeta) error {
	if len(accounts) < initializeAccountCount {
		return ErrNotEnoughAccountKeys
	}
	vaultMeta := accounts[accountVault]
	authority := accounts[accountAuthority]
	if accounts[accountSystemProgram].Address != ledger.SystemProgramID {
		return ErrInvalidProgramID
	}

	derived, err := p.deriver.Derive(authority.Address)
	if err != nil {
		return err
	}
	if vaultMeta.Address != derived.Address {
		return ErrInvalidVaultAddress
	}

	existing, err := tx.Account(ctx, derived.Address)
	switch {
	case err == nil:
		if existing.Owner == p.id {
			return ErrAlreadyInitialized
		}
	case !errors.Is(err, ledger.ErrAccountNotFound):
		return fmt.Errorf("load vault account: %w", err)
	}

	if !vaultMeta.IsWritable || !authority.IsWritable {
		return ErrAccountNotWritable
	}
	if !authority.IsSigner {
		return ErrMissingSignerAuthorization
	}

	now, err := tx.Now(ctx)
	if err != nil {
		return err
	}

	if err := tx.CreateAccount(ctx, authority.Address, derived.Address, RecordSize, p.id); err != nil {
		return err
	}

	record := Record{Owner: authority.Address, CreatedAt: now, Value: 0}
	data, err := record.MarshalBinary()
	if err != nil {
		return err
	}
	if err := tx.WriteData(ctx, p.id, derived.Address, data); err != nil {
		return err
	}

	if p.logger != nil {
		p.logger.Info("vault initialized",
			slog.String("vault", derived.Address.String()),
			slog.Int("bump", int(derived.Bump)),
			slog.String("owner", record.Owner.String()),
			slog.Int64("created_at", record.CreatedAt),
			slog.Uint64("value", record.Value),
		)
	}
	return nil
}

// NewInitializeInstruction builds the initialize_vault instruction for owner. The vault
// address is derived, never taken from the caller.
func NewInitializeInstruction(programID, owner pubkey.PublicKey) (chain.Instruction, Derivation, error) {
	derived, err := NewDeriver(programID).Derive(owner)
	if err != nil {
		return chain.Instruction{}, Derivation{}, err
	}
	ix := chain.Instruction{
		ProgramID: programID,
		Accounts: []chain.AccountMeta{
			{Address: derived.Address, IsWritable: true},
			{Address: owner, IsSigner: true, IsWritable: true},
			{Address: ledger.SystemProgramID},
		},
		Data: append([]byte(nil), initializeVaultDiscriminator[:]...),
	}
	return ix, derived, nil
}
