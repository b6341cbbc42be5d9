package ledger

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

var (
	payerKey   = pubkey.PublicKey{1}
	targetKey  = pubkey.PublicKey{2}
	programKey = pubkey.PublicKey{3}
)

func TestInMemoryLedger_CreateAccountChargesRent(t *testing.T) {
	l := NewInMemory(FixedClock(1_700_000_000))
	ctx := context.Background()
	SeedBalance(l, payerKey, 10_000_000)

	err := l.Execute(ctx, []pubkey.PublicKey{payerKey, targetKey}, func(tx Tx) error {
		return tx.CreateAccount(ctx, payerKey, targetKey, 56, programKey)
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	rent := MinimumBalance(56)
	payer, err := l.Account(ctx, payerKey)
	if err != nil {
		t.Fatalf("payer: %v", err)
	}
	if payer.Lamports != 10_000_000-rent {
		t.Fatalf("expected payer balance %d, got %d", 10_000_000-rent, payer.Lamports)
	}

	target, err := l.Account(ctx, targetKey)
	if err != nil {
		t.Fatalf("target: %v", err)
	}
	if target.Owner != programKey || target.Lamports != rent || len(target.Data) != 56 {
		t.Fatalf("unexpected target account: %+v", target)
	}
	if payer.Lamports+target.Lamports != 10_000_000 {
		t.Fatalf("lamports not conserved")
	}
}

func TestMinimumBalance(t *testing.T) {
	if got := MinimumBalance(56); got != 1_280_640 {
		t.Fatalf("expected 1280640, got %d", got)
	}
}

func TestInMemoryLedger_InsufficientFunds(t *testing.T) {
	l := NewInMemory(nil)
	ctx := context.Background()

	create := func(tx Tx) error { return tx.CreateAccount(ctx, payerKey, targetKey, 56, programKey) }

	if err := l.Execute(ctx, nil, create); err != ErrInsufficientFunds {
		t.Fatalf("expected insufficient funds for unknown payer, got %v", err)
	}

	SeedBalance(l, payerKey, MinimumBalance(56)-1)
	if err := l.Execute(ctx, nil, create); err != ErrInsufficientFunds {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if _, err := l.Account(ctx, targetKey); err != ErrAccountNotFound {
		t.Fatalf("expected no target account, got %v", err)
	}
}

func TestInMemoryLedger_AddressAlreadyInUse(t *testing.T) {
	l := NewInMemory(nil)
	ctx := context.Background()
	SeedBalance(l, payerKey, 10_000_000)

	taken := []Account{
		{Address: targetKey, Owner: programKey, Lamports: 1},
		{Address: targetKey, Owner: SystemProgramID, Lamports: 1, Data: []byte{0}},
	}
	for _, acct := range taken {
		SeedAccount(l, acct)
		err := l.Execute(ctx, nil, func(tx Tx) error {
			return tx.CreateAccount(ctx, payerKey, targetKey, 56, programKey)
		})
		if err != ErrAddressAlreadyInUse {
			t.Fatalf("expected address in use for %+v, got %v", acct, err)
		}
	}
}

func TestInMemoryLedger_CreateAccountTopsUpPrefunded(t *testing.T) {
	l := NewInMemory(nil)
	ctx := context.Background()
	rent := MinimumBalance(56)
	SeedBalance(l, payerKey, 10_000_000)
	SeedBalance(l, targetKey, 1_000)

	err := l.Execute(ctx, nil, func(tx Tx) error {
		return tx.CreateAccount(ctx, payerKey, targetKey, 56, programKey)
	})
	if err != nil {
		t.Fatalf("create over prefunded account: %v", err)
	}

	payer, _ := l.Account(ctx, payerKey)
	if payer.Lamports != 10_000_000-(rent-1_000) {
		t.Fatalf("expected payer charged %d, balance %d", rent-1_000, payer.Lamports)
	}
	target, _ := l.Account(ctx, targetKey)
	if target.Owner != programKey || target.Lamports != rent || len(target.Data) != 56 {
		t.Fatalf("unexpected target account: %+v", target)
	}
}

func TestInMemoryLedger_CreateAccountOverFullyFundedAddress(t *testing.T) {
	l := NewInMemory(nil)
	ctx := context.Background()
	rent := MinimumBalance(56)
	SeedBalance(l, targetKey, rent+5)

	// the payer owes nothing, so it need not exist
	err := l.Execute(ctx, nil, func(tx Tx) error {
		return tx.CreateAccount(ctx, payerKey, targetKey, 56, programKey)
	})
	if err != nil {
		t.Fatalf("create over funded account: %v", err)
	}
	target, _ := l.Account(ctx, targetKey)
	if target.Owner != programKey || target.Lamports != rent+5 {
		t.Fatalf("unexpected target account: %+v", target)
	}
}

func TestInMemoryLedger_RollbackOnError(t *testing.T) {
	l := NewInMemory(nil)
	ctx := context.Background()
	SeedBalance(l, payerKey, 10_000_000)

	boom := errors.New("boom")
	err := l.Execute(ctx, nil, func(tx Tx) error {
		if err := tx.CreateAccount(ctx, payerKey, targetKey, 56, programKey); err != nil {
			return err
		}
		return boom
	})
	if err != boom {
		t.Fatalf("expected boom, got %v", err)
	}

	payer, _ := l.Account(ctx, payerKey)
	if payer.Lamports != 10_000_000 {
		t.Fatalf("payer debited despite rollback: %d", payer.Lamports)
	}
	if _, err := l.Account(ctx, targetKey); err != ErrAccountNotFound {
		t.Fatalf("target created despite rollback: %v", err)
	}
}

func TestInMemoryLedger_WriteDataOwnership(t *testing.T) {
	l := NewInMemory(nil)
	ctx := context.Background()
	SeedBalance(l, payerKey, 10_000_000)

	err := l.Execute(ctx, nil, func(tx Tx) error {
		if err := tx.CreateAccount(ctx, payerKey, targetKey, 4, programKey); err != nil {
			return err
		}
		if err := tx.WriteData(ctx, payerKey, targetKey, []byte{1, 2, 3, 4}); err != ErrIllegalOwner {
			t.Errorf("expected illegal owner, got %v", err)
		}
		if err := tx.WriteData(ctx, programKey, targetKey, []byte{1, 2}); err != ErrInvalidAccountData {
			t.Errorf("expected invalid data length, got %v", err)
		}
		return tx.WriteData(ctx, programKey, targetKey, []byte{1, 2, 3, 4})
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	target, _ := l.Account(ctx, targetKey)
	if string(target.Data) != string([]byte{1, 2, 3, 4}) {
		t.Fatalf("unexpected data %v", target.Data)
	}
}

func TestInMemoryLedger_ClockReadOncePerTransaction(t *testing.T) {
	var reads int64
	clock := ClockFunc(func(context.Context) (int64, error) {
		reads++
		return 100 + reads, nil
	})
	l := NewInMemory(clock)
	ctx := context.Background()

	err := l.Execute(ctx, nil, func(tx Tx) error {
		first, err := tx.Now(ctx)
		if err != nil {
			return err
		}
		second, err := tx.Now(ctx)
		if err != nil {
			return err
		}
		if first != second || first != 101 {
			t.Errorf("expected a single reading 101, got %d and %d", first, second)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
}

func TestInMemoryLedger_ClockFailure(t *testing.T) {
	l := NewInMemory(ClockFunc(func(context.Context) (int64, error) {
		return 0, errors.New("sysvar missing")
	}))
	ctx := context.Background()

	err := l.Execute(ctx, nil, func(tx Tx) error {
		_, err := tx.Now(ctx)
		return err
	})
	if !errors.Is(err, ErrClockUnavailable) {
		t.Fatalf("expected clock unavailable, got %v", err)
	}
}

func TestInMemoryLedger_ConcurrentCreates(t *testing.T) {
	l := NewInMemory(nil)
	ctx := context.Background()
	SeedBalance(l, payerKey, 100_000_000)

	const workers = 10

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Execute(ctx, []pubkey.PublicKey{targetKey}, func(tx Tx) error {
				return tx.CreateAccount(ctx, payerKey, targetKey, 56, programKey)
			})
			switch err {
			case nil:
				mu.Lock()
				succeeded++
				mu.Unlock()
			case ErrAddressAlreadyInUse:
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 {
		t.Fatalf("expected exactly one successful create, got %d", succeeded)
	}
	payer, _ := l.Account(ctx, payerKey)
	if payer.Lamports != 100_000_000-MinimumBalance(56) {
		t.Fatalf("unexpected payer balance %d", payer.Lamports)
	}
}

func TestInMemoryLedger_Airdrop(t *testing.T) {
	l := NewInMemory(nil)
	ctx := context.Background()

	if _, err := l.Airdrop(ctx, payerKey, 500); err != nil {
		t.Fatalf("airdrop: %v", err)
	}
	balance, err := l.Airdrop(ctx, payerKey, 700)
	if err != nil {
		t.Fatalf("airdrop: %v", err)
	}
	if balance != 1_200 {
		t.Fatalf("expected 1200, got %d", balance)
	}
}

func TestInMemoryLedger_AirdropOverflow(t *testing.T) {
	l := NewInMemory(nil)
	ctx := context.Background()
	SeedBalance(l, payerKey, math.MaxUint64-10)

	if _, err := l.Airdrop(ctx, payerKey, 11); err != ErrLamportsOverflow {
		t.Fatalf("expected overflow, got %v", err)
	}
	balance, err := l.Airdrop(ctx, payerKey, 10)
	if err != nil {
		t.Fatalf("airdrop to max: %v", err)
	}
	if balance != math.MaxUint64 {
		t.Fatalf("expected max balance, got %d", balance)
	}
}

func TestTopUp(t *testing.T) {
	cases := []struct{ rent, prefunded, want uint64 }{
		{100, 0, 100},
		{100, 40, 60},
		{100, 100, 0},
		{100, 250, 0},
	}
	for _, c := range cases {
		if got := TopUp(c.rent, c.prefunded); got != c.want {
			t.Fatalf("TopUp(%d, %d) = %d, want %d", c.rent, c.prefunded, got, c.want)
		}
	}
}
