package vault

import "github.com/congo-pay/anchor_vault/internal/pubkey"

// Vault is a decoded record together with where it lives.
type Vault struct {
	Address pubkey.PublicKey
	Bump    uint8
	Record
}

// InitializeResult describes a committed initialize_vault transaction.
type InitializeResult struct {
	TransactionID string
	Vault         Vault
}
