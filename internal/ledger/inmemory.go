package ledger

import (
	"context"
	"math"
	"sync"

	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

type inMemoryLedger struct {
	mu       sync.Mutex
	clock    Clock
	accounts map[pubkey.PublicKey]Account
}

// NewInMemory creates a concurrency-safe in-memory ledger useful for unit tests and dev mode.
// Transactions are serialised ledger-wide.
func NewInMemory(clock Clock) Ledger {
	if clock == nil {
		clock = SystemClock{}
	}
	return &inMemoryLedger{
		clock:    clock,
		accounts: make(map[pubkey.PublicKey]Account),
	}
}

func (l *inMemoryLedger) Execute(ctx context.Context, _ []pubkey.PublicKey, fn func(Tx) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx := &inMemoryTx{
		ledger: l,
		clock:  &txClock{clock: l.clock},
		staged: make(map[pubkey.PublicKey]Account),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	for addr, acct := range tx.staged {
		l.accounts[addr] = acct
	}
	return nil
}

func (l *inMemoryLedger) Account(_ context.Context, address pubkey.PublicKey) (Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[address]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return cloneAccount(acct), nil
}

func (l *inMemoryLedger) Airdrop(_ context.Context, address pubkey.PublicKey, lamports uint64) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[address]
	if !ok {
		acct = Account{Address: address, Owner: SystemProgramID}
	}
	if acct.Owner != SystemProgramID {
		return 0, ErrIllegalOwner
	}
	if acct.Lamports > math.MaxUint64-lamports {
		return 0, ErrLamportsOverflow
	}
	acct.Lamports += lamports
	l.accounts[address] = acct
	return acct.Lamports, nil
}

type inMemoryTx struct {
	ledger *inMemoryLedger
	clock  *txClock
	staged map[pubkey.PublicKey]Account
}

func (t *inMemoryTx) Now(ctx context.Context) (int64, error) {
	return t.clock.now(ctx)
}

func (t *inMemoryTx) Account(_ context.Context, address pubkey.PublicKey) (Account, error) {
	acct, ok := t.lookup(address)
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return cloneAccount(acct), nil
}

func (t *inMemoryTx) CreateAccount(_ context.Context, payer, address pubkey.PublicKey, space uint64, owner pubkey.PublicKey) error {
	var prefunded uint64
	if existing, exists := t.lookup(address); exists {
		if !Allocatable(existing) {
			return ErrAddressAlreadyInUse
		}
		prefunded = existing.Lamports
	}

	rent := MinimumBalance(space)
	if due := TopUp(rent, prefunded); due > 0 {
		payerAcct, ok := t.lookup(payer)
		if !ok || payerAcct.Owner != SystemProgramID || payerAcct.Lamports < due {
			return ErrInsufficientFunds
		}
		payerAcct.Lamports -= due
		t.staged[payer] = payerAcct
		prefunded += due
	}

	t.staged[address] = Account{
		Address:  address,
		Owner:    owner,
		Lamports: prefunded,
		Data:     make([]byte, space),
	}
	return nil
}

func (t *inMemoryTx) WriteData(_ context.Context, program, address pubkey.PublicKey, data []byte) error {
	acct, ok := t.lookup(address)
	if !ok {
		return ErrAccountNotFound
	}
	if acct.Owner != program {
		return ErrIllegalOwner
	}
	if len(data) != len(acct.Data) {
		return ErrInvalidAccountData
	}
	acct = cloneAccount(acct)
	copy(acct.Data, data)
	t.staged[address] = acct
	return nil
}

func (t *inMemoryTx) lookup(address pubkey.PublicKey) (Account, bool) {
	if acct, ok := t.staged[address]; ok {
		return acct, true
	}
	acct, ok := t.ledger.accounts[address]
	return acct, ok
}

func cloneAccount(a Account) Account {
	if a.Data != nil {
		a.Data = append([]byte(nil), a.Data...)
	}
	return a
}
