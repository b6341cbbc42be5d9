package pubkey

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProgramID = MustParse("C1Hj34Yrhc2R4vnFbRtABeoRLozAnx9VhgpScg3hHuHp")

func randomKey(t *testing.T) PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	pk, err := FromBytes(pub)
	require.NoError(t, err)
	return pk
}

func TestFindProgramAddressDeterministic(t *testing.T) {
	owner := randomKey(t)
	seeds := [][]byte{[]byte("vault"), owner[:]}

	a, bumpA, err := FindProgramAddress(seeds, testProgramID)
	require.NoError(t, err)
	b, bumpB, err := FindProgramAddress(seeds, testProgramID)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, bumpA, bumpB)
	assert.False(t, a.IsOnCurve())
}

func TestFindProgramAddressMatchesCreate(t *testing.T) {
	for i := 0; i < 16; i++ {
		owner := randomKey(t)
		seeds := [][]byte{[]byte("vault"), owner[:]}

		addr, bump, err := FindProgramAddress(seeds, testProgramID)
		require.NoError(t, err)

		created, err := CreateProgramAddress(append(seeds, []byte{bump}), testProgramID)
		require.NoError(t, err)
		assert.Equal(t, addr, created)
	}
}

func TestFindProgramAddressReturnsHighestBump(t *testing.T) {
	// Roughly half of all seed sets land on the curve at bump 255; search until one does so the
	// skip path is exercised.
	for i := 0; i < 256; i++ {
		owner := randomKey(t)
		seeds := [][]byte{[]byte("vault"), owner[:]}

		_, bump, err := FindProgramAddress(seeds, testProgramID)
		require.NoError(t, err)
		if bump == 255 {
			continue
		}
		for higher := int(bump) + 1; higher <= 255; higher++ {
			_, err := CreateProgramAddress(append(seeds, []byte{byte(higher)}), testProgramID)
			require.ErrorIs(t, err, ErrInvalidSeeds)
		}
		return
	}
	t.Fatal("no seed set required a bump below 255")
}

func TestDistinctOwnersDeriveDistinctAddresses(t *testing.T) {
	o1, o2 := randomKey(t), randomKey(t)

	a1, _, err := FindProgramAddress([][]byte{[]byte("vault"), o1[:]}, testProgramID)
	require.NoError(t, err)
	a2, _, err := FindProgramAddress([][]byte{[]byte("vault"), o2[:]}, testProgramID)
	require.NoError(t, err)
	assert.NotEqual(t, a1, a2)
}

func TestProgramIDSeparatesAddresses(t *testing.T) {
	owner := randomKey(t)
	seeds := [][]byte{[]byte("vault"), owner[:]}

	a1, _, err := FindProgramAddress(seeds, testProgramID)
	require.NoError(t, err)
	a2, _, err := FindProgramAddress(seeds, randomKey(t))
	require.NoError(t, err)
	assert.NotEqual(t, a1, a2)
}

func TestSeedLimits(t *testing.T) {
	long := bytes.Repeat([]byte{1}, MaxSeedLength+1)
	_, err := CreateProgramAddress([][]byte{long}, testProgramID)
	require.ErrorIs(t, err, ErrMaxSeedLengthExceeded)

	_, _, err = FindProgramAddress([][]byte{long}, testProgramID)
	require.ErrorIs(t, err, ErrMaxSeedLengthExceeded)

	tooMany := make([][]byte, MaxSeeds)
	for i := range tooMany {
		tooMany[i] = []byte{byte(i)}
	}
	// the bump makes it MaxSeeds+1
	_, _, err = FindProgramAddress(tooMany, testProgramID)
	require.ErrorIs(t, err, ErrMaxSeedLengthExceeded)
	assert.False(t, errors.Is(err, ErrAddressDerivationExhausted))
}
