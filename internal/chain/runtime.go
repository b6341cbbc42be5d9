package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/congo-pay/anchor_vault/internal/ledger"
	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

// ErrUnknownProgram is returned when no registered program matches the instruction.
var ErrUnknownProgram = errors.New("unknown program")

// Program is on-ledger logic invoked by the runtime inside a ledger transaction.
type Program interface {
	ID() pubkey.PublicKey
	// Process executes ix. Signer flags on ix.Accounts have already been verified.
	Process(ctx context.Context, tx ledger.Tx, ix Instruction) error
}

// Receipt describes a committed transaction.
type Receipt struct {
	TransactionID string
	ProgramID     pubkey.PublicKey
}

// Runtime verifies transactions and dispatches them to registered programs.
type Runtime struct {
	ledger   ledger.Ledger
	programs map[pubkey.PublicKey]Program
	logger   *slog.Logger
}

// NewRuntime builds a runtime over the ledger with the given programs registered.
func NewRuntime(l ledger.Ledger, logger *slog.Logger, programs ...Program) *Runtime {
	r := &Runtime{
		ledger:   l,
		programs: make(map[pubkey.PublicKey]Program, len(programs)),
		logger:   logger,
	}
	for _, p := range programs {
		r.programs[p.ID()] = p
	}
	return r
}

// Ledger exposes the backing ledger for read paths.
func (r *Runtime) Ledger() ledger.Ledger {
	return r.ledger
}

// Submit verifies signatures, resolves signer flags and runs the instruction atomically.
// An account is treated as a signer only if it both claims to sign and carries a valid signature.
func (r *Runtime) Submit(ctx context.Context, tx *Transaction) (Receipt, error) {
	if tx == nil || tx.Instruction.ProgramID.IsZero() {
		return Receipt{}, ErrMissingInstruction
	}

	signers, err := tx.VerifySignatures()
	if err != nil {
		return Receipt{}, err
	}

	program, ok := r.programs[tx.Instruction.ProgramID]
	if !ok {
		return Receipt{}, fmt.Errorf("%w: %s", ErrUnknownProgram, tx.Instruction.ProgramID)
	}

	ix := tx.Instruction
	ix.Accounts = make([]AccountMeta, len(tx.Instruction.Accounts))
	for i, meta := range tx.Instruction.Accounts {
		meta.IsSigner = meta.IsSigner && signers[meta.Address]
		ix.Accounts[i] = meta
	}

	txID := tx.ID()
	if txID == "" {
		txID = uuid.NewString()
	}

	err = r.ledger.Execute(ctx, ix.Writable(), func(ltx ledger.Tx) error {
		return program.Process(ctx, ltx, ix)
	})
	if err != nil {
		if r.logger != nil {
			r.logger.Warn("transaction aborted",
				slog.String("transaction_id", txID),
				slog.String("program_id", ix.ProgramID.String()),
				slog.Any("error", err),
			)
		}
		return Receipt{}, err
	}

	if r.logger != nil {
		r.logger.Info("transaction committed",
			slog.String("transaction_id", txID),
			slog.String("program_id", ix.ProgramID.String()),
		)
	}
	return Receipt{TransactionID: txID, ProgramID: ix.ProgramID}, nil
}
