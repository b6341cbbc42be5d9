package vault

import "github.com/congo-pay/anchor_vault/internal/pubkey"

// SeedLabel separates vault addresses from any other address the program derives.
const SeedLabel = "vault"

// Derivation is a derived vault address and its canonical bump.
type Derivation struct {
	Address pubkey.PublicKey
	Bump    uint8
}

// Deriver computes vault addresses for one program id.
type Deriver struct {
	programID pubkey.PublicKey
}

func NewDeriver(programID pubkey.PublicKey) Deriver {
	return Deriver{programID: programID}
}

// Derive returns the vault address for owner. It is pure and safe for third parties to use
// when verifying an address.
func (d Deriver) Derive(owner pubkey.PublicKey) (Derivation, error) {
	addr, bump, err := pubkey.FindProgramAddress([][]byte{[]byte(SeedLabel), owner[:]}, d.programID)
	if err != nil {
		return Derivation{}, err
	}
	return Derivation{Address: addr, Bump: bump}, nil
}
