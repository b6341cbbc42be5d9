package cli

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/anchor_vault/internal/config"
	"github.com/congo-pay/anchor_vault/internal/ledger"
	"github.com/congo-pay/anchor_vault/internal/logging"
	"github.com/congo-pay/anchor_vault/internal/pubkey"
	"github.com/congo-pay/anchor_vault/internal/routes"
	"github.com/congo-pay/anchor_vault/internal/vault"
)

const testCreatedAt = int64(1_700_000_000)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeKeypair(t *testing.T, key []byte) string {
	t.Helper()
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	raw, err := json.Marshal(ints)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func newKeypair(t *testing.T) (pubkey.PublicKey, string) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	owner, err := pubkey.FromBytes(pub)
	require.NoError(t, err)
	return owner, writeKeypair(t, priv)
}

// startServer runs the full API over a real listener with an in-memory ledger.
func startServer(t *testing.T) string {
	t.Helper()
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	err := routes.Setup(app, routes.Deps{
		Cfg: config.Config{
			Env:            "development",
			ProgramID:      pubkey.MustParse(defaultProgramID),
			AirdropEnabled: true,
			InitRateLimit:  10,
		},
		Logger: logging.Discard(),
		Ledger: ledger.NewInMemory(ledger.FixedClock(testCreatedAt)),
	})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "http://" + ln.Addr().String()
}

func TestDeriveCommand(t *testing.T) {
	owner, _ := newKeypair(t)
	want, err := vault.NewDeriver(pubkey.MustParse(defaultProgramID)).Derive(owner)
	require.NoError(t, err)

	out, err := run(t, "derive", owner.String())
	require.NoError(t, err)
	assert.Contains(t, out, want.Address.String())
	assert.Contains(t, out, strconv.Itoa(int(want.Bump)))

	out, err = run(t, "derive", owner.String(), "--format", "json")
	require.NoError(t, err)
	var got deriveOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, want.Address.String(), got.Address)
	assert.Equal(t, want.Bump, got.Bump)
	assert.Equal(t, owner.String(), got.Owner)
}

func TestDeriveDependsOnProgramID(t *testing.T) {
	owner, _ := newKeypair(t)
	other, _ := newKeypair(t)

	a, err := run(t, "derive", owner.String(), "--format", "json")
	require.NoError(t, err)
	b, err := run(t, "derive", owner.String(), "--format", "json", "--program-id", other.String())
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRootRejectsBadFlags(t *testing.T) {
	owner, _ := newKeypair(t)

	_, err := run(t, "derive", owner.String(), "--format", "yaml")
	assert.Error(t, err)

	_, err = run(t, "derive", owner.String(), "--program-id", "not-base58!")
	assert.Error(t, err)

	_, err = run(t, "derive", "nope")
	assert.Error(t, err)
}

func TestLoadKeypair(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	got, err := loadKeypair(writeKeypair(t, priv))
	require.NoError(t, err)
	assert.Equal(t, priv, got)

	_, err = loadKeypair(writeKeypair(t, priv[:32]))
	assert.Error(t, err)

	tampered := append([]byte(nil), priv...)
	tampered[40] ^= 0xff
	_, err = loadKeypair(writeKeypair(t, tampered))
	assert.Error(t, err)

	_, err = loadKeypair(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestInitShowAgainstServer(t *testing.T) {
	server := startServer(t)
	owner, keyPath := newKeypair(t)

	_, err := run(t, "--server", server, "airdrop", owner.String(), "10000000")
	require.NoError(t, err)

	out, err := run(t, "--server", server, "--format", "json", "init", "--keypair", keyPath)
	require.NoError(t, err)
	var created initOutput
	require.NoError(t, json.Unmarshal([]byte(out), &created))
	assert.False(t, created.Existing)
	assert.NotEmpty(t, created.TransactionID)
	assert.Equal(t, owner.String(), created.Vault.Owner)
	assert.Equal(t, testCreatedAt, created.Vault.CreatedAt)
	assert.Zero(t, created.Vault.Value)

	out, err = run(t, "--server", server, "--format", "json", "show", owner.String())
	require.NoError(t, err)
	var shown vaultRecord
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, created.Vault, shown)

	_, err = run(t, "--server", server, "init", "--keypair", keyPath)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)

	out, err = run(t, "--server", server, "--format", "json", "init", "--keypair", keyPath, "--skip-existing")
	require.NoError(t, err)
	var existing initOutput
	require.NoError(t, json.Unmarshal([]byte(out), &existing))
	assert.True(t, existing.Existing)
	assert.Equal(t, created.Vault, existing.Vault)
}

func TestInitWithoutFunds(t *testing.T) {
	server := startServer(t)
	_, keyPath := newKeypair(t)

	_, err := run(t, "--server", server, "init", "--keypair", keyPath, "--skip-existing")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusPaymentRequired, apiErr.Status)
}

func TestShowMissingVault(t *testing.T) {
	server := startServer(t)
	owner, _ := newKeypair(t)

	_, err := run(t, "--server", server, "show", owner.String())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}
