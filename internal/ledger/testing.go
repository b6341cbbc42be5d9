package ledger

import "github.com/congo-pay/anchor_vault/internal/pubkey"

// SeedAccount is a test helper that stores an account verbatim when using the in-memory ledger.
func SeedAccount(l Ledger, acct Account) {
	if mem, ok := l.(*inMemoryLedger); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.accounts[acct.Address] = cloneAccount(acct)
	}
}

// SeedBalance is a test helper that sets the lamports of a system account.
func SeedBalance(l Ledger, address pubkey.PublicKey, lamports uint64) {
	SeedAccount(l, Account{Address: address, Owner: SystemProgramID, Lamports: lamports})
}
