package vault

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/congo-pay/anchor_vault/internal/chain"
	"github.com/congo-pay/anchor_vault/internal/ledger"
	"github.com/congo-pay/anchor_vault/internal/logging"
	"github.com/congo-pay/anchor_vault/internal/pubkey"
)

const (
	testCreatedAt = int64(1_712_345_678)
	fundedBalance = uint64(10_000_000)
)

var testProgramID = pubkey.MustParse("C1Hj34Yrhc2R4vnFbRtABeoRLozAnx9VhgpScg3hHuHp")

type fixture struct {
	ledger  ledger.Ledger
	runtime *chain.Runtime
	program *Program
}

func newFixture(t *testing.T, clock ledger.Clock) *fixture {
	t.Helper()
	if clock == nil {
		clock = ledger.FixedClock(testCreatedAt)
	}
	l := ledger.NewInMemory(clock)
	program := NewProgram(testProgramID, logging.Discard())
	return &fixture{
		ledger:  l,
		runtime: chain.NewRuntime(l, logging.Discard(), program),
		program: program,
	}
}

type signer struct {
	key    ed25519.PrivateKey
	pubkey pubkey.PublicKey
}

func newSigner(t *testing.T) signer {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	pk, err := pubkey.FromBytes(pub)
	require.NoError(t, err)
	return signer{key: priv, pubkey: pk}
}

func (f *fixture) fund(s signer) {
	ledger.SeedBalance(f.ledger, s.pubkey, fundedBalance)
}

func signedInitialize(t *testing.T, s signer) *chain.Transaction {
	t.Helper()
	ix, _, err := NewInitializeInstruction(testProgramID, s.pubkey)
	require.NoError(t, err)
	tx := chain.NewTransaction(ix)
	require.NoError(t, tx.Sign(s.key))
	return tx
}
